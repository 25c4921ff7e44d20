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

// CatalogService manages the service catalog. Entries are soft-deleted
// so old line items keep resolving; pricing completeness is validated
// against the pricing type on every write.
type CatalogService struct {
	store  *repository.Store
	audit  *AuditService
	logger *zap.Logger
}

func NewCatalogService(store *repository.Store, audit *AuditService, logger *zap.Logger) *CatalogService {
	return &CatalogService{store: store, audit: audit, logger: logger}
}

type ServiceInput struct {
	Name              string
	Description       string
	PricingType       models.PricingType
	DefaultPriceCents *int64
	UnitPriceCents    *int64
	UnitLabel         string
	DurationMinutes   *int
	IsActive          *bool
	DisplayOrder      *int
}

func validateServiceInput(input *ServiceInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return fmt.Errorf("%w: name is required", models.ErrValidation)
	}
	if input.DefaultPriceCents != nil && *input.DefaultPriceCents < 0 {
		return fmt.Errorf("%w: price cannot be negative", models.ErrValidation)
	}
	if input.UnitPriceCents != nil && *input.UnitPriceCents < 0 {
		return fmt.Errorf("%w: price cannot be negative", models.ErrValidation)
	}
	return nil
}

func (s *CatalogService) Create(ctx context.Context, input ServiceInput) (*models.Service, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateServiceInput(&input); err != nil {
		return nil, err
	}

	service := &models.Service{
		Name:              input.Name,
		Description:       input.Description,
		PricingType:       input.PricingType,
		DefaultPriceCents: input.DefaultPriceCents,
		UnitPriceCents:    input.UnitPriceCents,
		UnitLabel:         input.UnitLabel,
		DurationMinutes:   input.DurationMinutes,
		IsActive:          true,
	}
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}
	if input.DisplayOrder != nil {
		service.DisplayOrder = *input.DisplayOrder
	}
	if err := service.ValidatePricing(); err != nil {
		return nil, err
	}
	if err := s.store.Services.Create(ctx, userID, service); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, userID, "service", service.ID, "created", nil)
	return service, nil
}

func (s *CatalogService) Get(ctx context.Context, serviceID uuid.UUID) (*models.Service, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Services.GetByID(ctx, userID, serviceID)
}

func (s *CatalogService) List(ctx context.Context, includeInactive bool) ([]models.Service, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Services.List(ctx, userID, includeInactive)
}

func (s *CatalogService) Update(ctx context.Context, serviceID uuid.UUID, input ServiceInput) (*models.Service, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	service, err := s.store.Services.GetByID(ctx, userID, serviceID)
	if err != nil {
		return nil, err
	}
	if err := validateServiceInput(&input); err != nil {
		return nil, err
	}

	service.Name = input.Name
	service.Description = input.Description
	service.PricingType = input.PricingType
	service.DefaultPriceCents = input.DefaultPriceCents
	service.UnitPriceCents = input.UnitPriceCents
	service.UnitLabel = input.UnitLabel
	service.DurationMinutes = input.DurationMinutes
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}
	if input.DisplayOrder != nil {
		service.DisplayOrder = *input.DisplayOrder
	}
	if err := service.ValidatePricing(); err != nil {
		return nil, err
	}

	// Catalog edits apply from now on; lines already priced keep the
	// price they were created with.
	if err := s.store.Services.Update(ctx, userID, service); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, userID, "service", service.ID, "updated", nil)
	return service, nil
}

func (s *CatalogService) Delete(ctx context.Context, serviceID uuid.UUID) error {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.store.Services.SoftDelete(ctx, userID, serviceID); err != nil {
		return err
	}
	s.audit.Record(ctx, userID, "service", serviceID, "deleted", nil)
	return nil
}
