package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fieldpro-backend/models"
	"fieldpro-backend/repository"
	"fieldpro-backend/utils"
)

// testEnv wires the full service stack against an in-memory database
// with one tenant signed in.
type testEnv struct {
	t     *testing.T
	store *repository.Store
	bus   *EventBus
	audit *AuditService

	customers  *CustomerService
	addresses  *AddressService
	catalog    *CatalogService
	tickets    *TicketService
	lineItems  *LineItemService
	invoices   *InvoiceService
	recurrence *RecurrenceService
	leads      *LeadService
	notes      *NoteService
	attributes *AttributeService
	waitlist   *WaitlistService

	userID uuid.UUID
	ctx    context.Context
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Address{},
		&models.Service{},
		&models.Ticket{},
		&models.LineItem{},
		&models.Invoice{},
		&models.RecurringTemplate{},
		&models.Lead{},
		&models.Note{},
		&models.CustomerAttribute{},
		&models.ScheduledMessage{},
		&models.WaitlistEntry{},
		&models.AuditLog{},
	))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop()
	store := repository.NewStore(newTestDB(t), log)
	bus := NewEventBus(log)
	audit := NewAuditService(store, log)

	env := &testEnv{
		t:     t,
		store: store,
		bus:   bus,
		audit: audit,

		customers:  NewCustomerService(store, bus, audit, log),
		addresses:  NewAddressService(store, audit, log),
		catalog:    NewCatalogService(store, audit, log),
		tickets:    NewTicketService(store, bus, audit, log),
		lineItems:  NewLineItemService(store, audit, log),
		invoices:   NewInvoiceService(store, bus, audit, log),
		recurrence: NewRecurrenceService(store, bus, audit, log),
		leads:      NewLeadService(store, bus, audit, log),
		notes:      NewNoteService(store, bus, audit, log),
		attributes: NewAttributeService(store, audit, log),
		waitlist:   NewWaitlistService(store, audit, log),
	}

	env.userID = env.createUser("owner@example.com", 825)
	env.ctx = utils.WithUserID(context.Background(), env.userID)
	return env
}

func (e *testEnv) createUser(email string, taxRateBps int) uuid.UUID {
	e.t.Helper()
	user := &models.User{
		Email:             email,
		Name:              "Test Owner",
		BusinessName:      "Crystal Clear Windows",
		DefaultTaxRateBps: taxRateBps,
		IsActive:          true,
	}
	require.NoError(e.t, e.store.Users.Create(context.Background(), user))
	return user.ID
}

func (e *testEnv) createCustomer(phone string) *models.Customer {
	e.t.Helper()
	customer, err := e.customers.Create(e.ctx, CustomerInput{
		FirstName: "Pat",
		LastName:  "Nguyen",
		Phone:     phone,
	})
	require.NoError(e.t, err)
	return customer
}

func (e *testEnv) createFixedService(name string, priceCents int64) *models.Service {
	e.t.Helper()
	service, err := e.catalog.Create(e.ctx, ServiceInput{
		Name:              name,
		PricingType:       models.PricingFixed,
		DefaultPriceCents: &priceCents,
	})
	require.NoError(e.t, err)
	return service
}

func (e *testEnv) createPerUnitService(name string, unitCents int64) *models.Service {
	e.t.Helper()
	service, err := e.catalog.Create(e.ctx, ServiceInput{
		Name:           name,
		PricingType:    models.PricingPerUnit,
		UnitPriceCents: &unitCents,
		UnitLabel:      "window",
	})
	require.NoError(e.t, err)
	return service
}

func (e *testEnv) createFlexibleService(name string) *models.Service {
	e.t.Helper()
	service, err := e.catalog.Create(e.ctx, ServiceInput{
		Name:        name,
		PricingType: models.PricingFlexible,
	})
	require.NoError(e.t, err)
	return service
}

// createScheduledTicket makes a ticket for a fresh customer, scheduled
// a week out.
func (e *testEnv) createScheduledTicket(items ...LineItemInput) *models.Ticket {
	e.t.Helper()
	customer := e.createCustomer("")
	at := time.Now().UTC().AddDate(0, 0, 7)
	ticket, err := e.tickets.Create(e.ctx, CreateTicketInput{
		CustomerID:  customer.ID,
		Title:       "Window Cleaning",
		ScheduledAt: &at,
		Items:       items,
	})
	require.NoError(e.t, err)
	return ticket
}

// completeTicket walks a ticket through clock-in and completion.
func (e *testEnv) completeTicket(ticketID uuid.UUID) *models.Ticket {
	e.t.Helper()
	_, err := e.tickets.ClockIn(e.ctx, ticketID)
	require.NoError(e.t, err)
	ticket, err := e.tickets.Complete(e.ctx, ticketID, nil)
	require.NoError(e.t, err)
	return ticket
}

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }
