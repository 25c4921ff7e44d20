package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/google/uuid"

	"fieldpro-backend/config"
	"fieldpro-backend/controllers"
	"fieldpro-backend/models"
	"fieldpro-backend/repository"
	"fieldpro-backend/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)
	config.Logger = zap.NewNop()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Customer{}, &models.Address{}, &models.Service{},
		&models.Ticket{}, &models.LineItem{}, &models.Invoice{},
		&models.RecurringTemplate{}, &models.Lead{}, &models.Note{},
		&models.CustomerAttribute{}, &models.ScheduledMessage{},
		&models.WaitlistEntry{}, &models.AuditLog{},
	))

	log := zap.NewNop()
	store := repository.NewStore(db, log)
	bus := services.NewEventBus(log)
	audit := services.NewAuditService(store, log)

	cfg := &config.Config{}
	auth := services.NewAuthService(store, nil, nil, cfg, audit, log)
	customers := services.NewCustomerService(store, bus, audit, log)
	addresses := services.NewAddressService(store, audit, log)
	catalog := services.NewCatalogService(store, audit, log)
	tickets := services.NewTicketService(store, bus, audit, log)
	lineItems := services.NewLineItemService(store, audit, log)
	invoices := services.NewInvoiceService(store, bus, audit, log)
	recurrence := services.NewRecurrenceService(store, bus, audit, log)
	leads := services.NewLeadService(store, bus, audit, log)
	notes := services.NewNoteService(store, bus, audit, log)
	attributes := services.NewAttributeService(store, audit, log)
	messages := services.NewMessageService(store, nil, audit, log)
	waitlist := services.NewWaitlistService(store, audit, log)

	return SetupRouter(Controllers{
		Auth:      controllers.NewAuthController(auth),
		Customers: controllers.NewCustomerController(customers, addresses),
		Services:  controllers.NewServiceController(catalog),
		Tickets:   controllers.NewTicketController(tickets, lineItems, invoices),
		Invoices:  controllers.NewInvoiceController(invoices),
		Templates: controllers.NewTemplateController(recurrence),
		Leads:     controllers.NewLeadController(leads),
		Notes:     controllers.NewNoteController(notes, attributes, audit),
		Messages:  controllers.NewMessageController(messages, waitlist),
	}, []string{"http://localhost:3000"})
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerAndToken(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"email":             "dana@example.com",
		"password":          "hunter2hunter2",
		"name":              "Dana Reyes",
		"businessName":      "Reyes Window Care",
		"defaultTaxRateBps": 825,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIRequiresAuth(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/customers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/customers", "not-a-valid-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCustomerCRUDOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndToken(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/customers", token, gin.H{
		"firstName": "Pat",
		"lastName":  "Nguyen",
		"phone":     "+1 (555) 123-4567",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID    uuid.UUID
		Phone string
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "+15551234567", created.Phone)

	w = doJSON(t, r, http.MethodGet, "/api/customers/"+created.ID.String(), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/customers/"+uuid.NewString(), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/customers/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTicketLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndToken(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/customers", token, gin.H{
		"firstName": "Pat",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var customer struct {
		ID uuid.UUID
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &customer))

	w = doJSON(t, r, http.MethodPost, "/api/services", token, gin.H{
		"name":              "Gutter Cleaning",
		"pricingType":       "fixed",
		"defaultPriceCents": 15000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var service struct {
		ID uuid.UUID
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &service))

	w = doJSON(t, r, http.MethodPost, "/api/tickets", token, gin.H{
		"customerId": customer.ID,
		"title":      "Gutter Cleaning",
		"items": []gin.H{
			{"serviceId": service.ID},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var ticket struct {
		ID     uuid.UUID
		Status models.TicketStatus
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ticket))
	assert.Equal(t, models.TicketScheduled, ticket.Status)

	// Completing from scheduled is a state machine violation.
	w = doJSON(t, r, http.MethodPost, "/api/tickets/"+ticket.ID.String()+"/complete", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/tickets/"+ticket.ID.String()+"/clock-in", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = doJSON(t, r, http.MethodPost, "/api/tickets/"+ticket.ID.String()+"/complete", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Derive and inspect the invoice.
	w = doJSON(t, r, http.MethodPost, "/api/tickets/"+ticket.ID.String()+"/invoice", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var invoice struct {
		Status     models.InvoiceStatus
		TotalCents int64
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &invoice))
	assert.Equal(t, models.InvoiceDraft, invoice.Status)
	assert.Equal(t, int64(16238), invoice.TotalCents)
}
