package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fieldpro-backend/models"
	"fieldpro-backend/repository"
	"fieldpro-backend/utils"
)

type CustomerService struct {
	store  *repository.Store
	bus    *EventBus
	audit  *AuditService
	logger *zap.Logger
}

func NewCustomerService(store *repository.Store, bus *EventBus, audit *AuditService, logger *zap.Logger) *CustomerService {
	return &CustomerService{store: store, bus: bus, audit: audit, logger: logger}
}

type CustomerInput struct {
	FirstName              string
	LastName               string
	BusinessName           string
	Email                  string
	Phone                  string
	ReferredBy             *uuid.UUID
	ReferenceID            string
	Notes                  string
	PreferredContactMethod string
	PreferredTimeOfDay     string
}

func (s *CustomerService) validateInput(ctx context.Context, userID uuid.UUID, input *CustomerInput) error {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.BusinessName = strings.TrimSpace(input.BusinessName)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = utils.NormalizePhone(input.Phone)

	if input.FirstName == "" && input.LastName == "" && input.BusinessName == "" {
		return fmt.Errorf("%w: a name or business name is required", models.ErrValidation)
	}
	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		return fmt.Errorf("%w: invalid phone number", models.ErrValidation)
	}
	if input.Email != "" && !utils.ValidateEmail(input.Email) {
		return fmt.Errorf("%w: invalid email address", models.ErrValidation)
	}
	if input.ReferredBy != nil {
		if _, err := s.store.Customers.GetByID(ctx, userID, *input.ReferredBy); err != nil {
			return err
		}
	}
	return nil
}

func (s *CustomerService) Create(ctx context.Context, input CustomerInput) (*models.Customer, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(ctx, userID, &input); err != nil {
		return nil, err
	}

	customer := &models.Customer{
		FirstName:              input.FirstName,
		LastName:               input.LastName,
		BusinessName:           input.BusinessName,
		Email:                  input.Email,
		Phone:                  input.Phone,
		ReferredBy:             input.ReferredBy,
		ReferenceID:            input.ReferenceID,
		Notes:                  input.Notes,
		PreferredContactMethod: input.PreferredContactMethod,
		PreferredTimeOfDay:     input.PreferredTimeOfDay,
	}
	if err := s.store.Customers.Create(ctx, userID, customer); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, userID, "customer", customer.ID, "created", nil)
	s.bus.Publish(ctx, CustomerCreated{UserID: userID, CustomerID: customer.ID})
	return customer, nil
}

func (s *CustomerService) Get(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Customers.GetByID(ctx, userID, customerID)
}

func (s *CustomerService) List(ctx context.Context, filter repository.CustomerFilter) ([]models.Customer, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Customers.List(ctx, userID, filter)
}

func (s *CustomerService) Update(ctx context.Context, customerID uuid.UUID, input CustomerInput) (*models.Customer, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	customer, err := s.store.Customers.GetByID(ctx, userID, customerID)
	if err != nil {
		return nil, err
	}
	if input.ReferredBy != nil && *input.ReferredBy == customerID {
		return nil, fmt.Errorf("%w: customer cannot refer themselves", models.ErrValidation)
	}
	if err := s.validateInput(ctx, userID, &input); err != nil {
		return nil, err
	}

	before := customerSnapshot(customer)
	customer.FirstName = input.FirstName
	customer.LastName = input.LastName
	customer.BusinessName = input.BusinessName
	customer.Email = input.Email
	customer.Phone = input.Phone
	customer.ReferredBy = input.ReferredBy
	customer.ReferenceID = input.ReferenceID
	customer.Notes = input.Notes
	customer.PreferredContactMethod = input.PreferredContactMethod
	customer.PreferredTimeOfDay = input.PreferredTimeOfDay

	if err := s.store.Customers.Update(ctx, userID, customer); err != nil {
		return nil, err
	}

	if changes := ComputeChanges(before, customerSnapshot(customer)); len(changes) > 0 {
		s.audit.Record(ctx, userID, "customer", customer.ID, "updated", changes)
	}
	return customer, nil
}

// Delete tombstones the customer. History (tickets, invoices,
// referrals) keeps resolving through the tombstone.
func (s *CustomerService) Delete(ctx context.Context, customerID uuid.UUID) error {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.store.Customers.SoftDelete(ctx, userID, customerID); err != nil {
		return err
	}
	s.audit.Record(ctx, userID, "customer", customerID, "deleted", nil)
	return nil
}

func customerSnapshot(c *models.Customer) map[string]interface{} {
	return map[string]interface{}{
		"first_name":               c.FirstName,
		"last_name":                c.LastName,
		"business_name":            c.BusinessName,
		"email":                    c.Email,
		"phone":                    c.Phone,
		"referred_by":              uuidValue(c.ReferredBy),
		"reference_id":             c.ReferenceID,
		"notes":                    c.Notes,
		"preferred_contact_method": c.PreferredContactMethod,
		"preferred_time_of_day":    c.PreferredTimeOfDay,
	}
}
