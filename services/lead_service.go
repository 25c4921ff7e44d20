package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fieldpro-backend/models"
	"fieldpro-backend/repository"
	"fieldpro-backend/utils"
)

// LeadService runs the intake pipeline: new → contacted → qualified,
// ending in converted (with a customer back-reference) or archived.
// Both endings are terminal.
type LeadService struct {
	store  *repository.Store
	bus    *EventBus
	audit  *AuditService
	logger *zap.Logger
}

func NewLeadService(store *repository.Store, bus *EventBus, audit *AuditService, logger *zap.Logger) *LeadService {
	return &LeadService{store: store, bus: bus, audit: audit, logger: logger}
}

type LeadInput struct {
	Name    string
	Phone   string
	Email   string
	Source  string
	Urgency string
	RawText string
}

func (s *LeadService) Create(ctx context.Context, input LeadInput) (*models.Lead, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)
	input.RawText = strings.TrimSpace(input.RawText)
	if input.Name == "" && input.RawText == "" {
		return nil, fmt.Errorf("%w: a name or raw inquiry text is required", models.ErrValidation)
	}
	input.Phone = utils.NormalizePhone(input.Phone)
	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		return nil, fmt.Errorf("%w: invalid phone number", models.ErrValidation)
	}
	if input.Email != "" && !utils.ValidateEmail(input.Email) {
		return nil, fmt.Errorf("%w: invalid email address", models.ErrValidation)
	}

	lead := &models.Lead{
		Name:    input.Name,
		Phone:   input.Phone,
		Email:   strings.TrimSpace(input.Email),
		Source:  input.Source,
		Urgency: input.Urgency,
		RawText: input.RawText,
		Status:  models.LeadNew,
	}
	if err := s.store.Leads.Create(ctx, userID, lead); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, userID, "lead", lead.ID, "created", nil)
	s.bus.Publish(ctx, LeadCreated{UserID: userID, LeadID: lead.ID})
	return lead, nil
}

func (s *LeadService) Get(ctx context.Context, leadID uuid.UUID) (*models.Lead, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Leads.GetByID(ctx, userID, leadID)
}

func (s *LeadService) List(ctx context.Context, status models.LeadStatus, limit, offset int) ([]models.Lead, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Leads.List(ctx, userID, status, limit, offset)
}

// MarkContacted advances a new lead one step down the pipeline.
func (s *LeadService) MarkContacted(ctx context.Context, leadID uuid.UUID) (*models.Lead, error) {
	return s.advance(ctx, leadID, models.LeadContacted, "contacted", models.LeadNew)
}

// MarkQualified flags a contacted (or still-new) lead as worth
// converting.
func (s *LeadService) MarkQualified(ctx context.Context, leadID uuid.UUID) (*models.Lead, error) {
	return s.advance(ctx, leadID, models.LeadQualified, "qualified", models.LeadNew, models.LeadContacted)
}

func (s *LeadService) advance(ctx context.Context, leadID uuid.UUID, to models.LeadStatus, action string, from ...models.LeadStatus) (*models.Lead, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	lead, err := s.store.Leads.GetByID(ctx, userID, leadID)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, f := range from {
		if lead.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: cannot mark a %s lead %s", models.ErrInvalidTransition, lead.Status, to)
	}

	old := lead.Status
	lead.Status = to
	if to == models.LeadContacted && lead.ContactedAt == nil {
		now := time.Now().UTC()
		lead.ContactedAt = &now
	}
	if err := s.store.Leads.Update(ctx, userID, lead); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, userID, "lead", lead.ID, action, map[string]FieldChange{
		"status": {Old: string(old), New: string(to)},
	})
	return lead, nil
}

// Convert turns a lead into a customer. The lead keeps a back-
// reference to the customer it became; converting an already-terminal
// lead fails.
func (s *LeadService) Convert(ctx context.Context, leadID uuid.UUID) (*models.Lead, *models.Customer, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	lead, err := s.store.Leads.GetByID(ctx, userID, leadID)
	if err != nil {
		return nil, nil, err
	}
	if lead.Status == models.LeadConverted || lead.Status == models.LeadArchived {
		return nil, nil, fmt.Errorf("%w: lead is already %s", models.ErrInvalidTransition, lead.Status)
	}
	if lead.Name == "" {
		return nil, nil, fmt.Errorf("%w: lead needs a name before conversion", models.ErrValidation)
	}

	var customer *models.Customer
	err = s.store.Transaction(func(tx *repository.Store) error {
		first, last := splitName(lead.Name)
		customer = &models.Customer{
			FirstName: first,
			LastName:  last,
			Email:     lead.Email,
			Phone:     lead.Phone,
			Notes:     lead.RawText,
		}
		if err := tx.Customers.Create(ctx, userID, customer); err != nil {
			return err
		}
		lead.Status = models.LeadConverted
		lead.ConvertedCustomerID = &customer.ID
		return tx.Leads.Update(ctx, userID, lead)
	})
	if err != nil {
		return nil, nil, err
	}

	s.audit.Record(ctx, userID, "lead", lead.ID, "converted", map[string]FieldChange{
		"customer_id": {Old: nil, New: customer.ID.String()},
	})
	s.bus.Publish(ctx, CustomerCreated{UserID: userID, CustomerID: customer.ID})
	return lead, customer, nil
}

// Archive closes out a lead that is not going anywhere.
func (s *LeadService) Archive(ctx context.Context, leadID uuid.UUID) (*models.Lead, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	lead, err := s.store.Leads.GetByID(ctx, userID, leadID)
	if err != nil {
		return nil, err
	}
	if lead.Status == models.LeadConverted || lead.Status == models.LeadArchived {
		return nil, fmt.Errorf("%w: lead is already %s", models.ErrInvalidTransition, lead.Status)
	}

	old := lead.Status
	lead.Status = models.LeadArchived
	if err := s.store.Leads.Update(ctx, userID, lead); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, userID, "lead", lead.ID, "archived", map[string]FieldChange{
		"status": {Old: string(old), New: string(models.LeadArchived)},
	})
	return lead, nil
}

func (s *LeadService) Delete(ctx context.Context, leadID uuid.UUID) error {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.store.Leads.SoftDelete(ctx, userID, leadID); err != nil {
		return err
	}
	s.audit.Record(ctx, userID, "lead", leadID, "deleted", nil)
	return nil
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
