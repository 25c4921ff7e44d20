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

// AddressService manages customer addresses. A customer has at most
// one primary address; the flag moves inside a transaction so two rows
// can never both hold it.
type AddressService struct {
	store  *repository.Store
	audit  *AuditService
	logger *zap.Logger
}

func NewAddressService(store *repository.Store, audit *AuditService, logger *zap.Logger) *AddressService {
	return &AddressService{store: store, audit: audit, logger: logger}
}

type AddressInput struct {
	Label     string
	Street    string
	Street2   string
	City      string
	State     string
	Zip       string
	Notes     string
	IsPrimary bool
}

func (s *AddressService) Add(ctx context.Context, customerID uuid.UUID, input AddressInput) (*models.Address, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Street) == "" {
		return nil, fmt.Errorf("%w: street is required", models.ErrValidation)
	}
	if _, err := s.store.Customers.GetByID(ctx, userID, customerID); err != nil {
		return nil, err
	}

	address := &models.Address{
		CustomerID: customerID,
		Label:      input.Label,
		Street:     strings.TrimSpace(input.Street),
		Street2:    input.Street2,
		City:       input.City,
		State:      input.State,
		Zip:        input.Zip,
		Notes:      input.Notes,
		IsPrimary:  input.IsPrimary,
	}
	err = s.store.Transaction(func(tx *repository.Store) error {
		if input.IsPrimary {
			if err := tx.Addresses.ClearPrimary(ctx, userID, customerID); err != nil {
				return err
			}
		}
		return tx.Addresses.Create(ctx, userID, address)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, userID, "address", address.ID, "created", nil)
	return address, nil
}

func (s *AddressService) Update(ctx context.Context, addressID uuid.UUID, input AddressInput) (*models.Address, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	address, err := s.store.Addresses.GetByID(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Street) == "" {
		return nil, fmt.Errorf("%w: street is required", models.ErrValidation)
	}

	address.Label = input.Label
	address.Street = strings.TrimSpace(input.Street)
	address.Street2 = input.Street2
	address.City = input.City
	address.State = input.State
	address.Zip = input.Zip
	address.Notes = input.Notes

	err = s.store.Transaction(func(tx *repository.Store) error {
		if input.IsPrimary && !address.IsPrimary {
			if err := tx.Addresses.ClearPrimary(ctx, userID, address.CustomerID); err != nil {
				return err
			}
		}
		address.IsPrimary = input.IsPrimary
		return tx.Addresses.Update(ctx, userID, address)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, userID, "address", address.ID, "updated", nil)
	return address, nil
}

// SetPrimary moves the primary flag to this address.
func (s *AddressService) SetPrimary(ctx context.Context, addressID uuid.UUID) (*models.Address, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	address, err := s.store.Addresses.GetByID(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}
	if address.IsPrimary {
		return address, nil
	}

	err = s.store.Transaction(func(tx *repository.Store) error {
		if err := tx.Addresses.ClearPrimary(ctx, userID, address.CustomerID); err != nil {
			return err
		}
		address.IsPrimary = true
		return tx.Addresses.Update(ctx, userID, address)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, userID, "address", address.ID, "set_primary", nil)
	return address, nil
}

func (s *AddressService) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Address, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Customers.GetByID(ctx, userID, customerID); err != nil {
		return nil, err
	}
	return s.store.Addresses.ListByCustomer(ctx, userID, customerID)
}

func (s *AddressService) Delete(ctx context.Context, addressID uuid.UUID) error {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.store.Addresses.Delete(ctx, userID, addressID); err != nil {
		return err
	}
	s.audit.Record(ctx, userID, "address", addressID, "deleted", nil)
	return nil
}
