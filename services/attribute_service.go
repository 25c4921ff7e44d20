package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"fieldpro-backend/models"
	"fieldpro-backend/repository"
	"fieldpro-backend/utils"
)

// AttributeService keeps one value per (customer, key). Manual writes
// always land; extracted writes never overwrite a manual value, so a
// model's guess cannot clobber something the operator typed in.
type AttributeService struct {
	store  *repository.Store
	audit  *AuditService
	logger *zap.Logger
}

func NewAttributeService(store *repository.Store, audit *AuditService, logger *zap.Logger) *AttributeService {
	return &AttributeService{store: store, audit: audit, logger: logger}
}

func normalizeAttributeKey(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", fmt.Errorf("%w: attribute key is required", models.ErrValidation)
	}
	return key, nil
}

// SetManual writes an operator-entered attribute value.
func (s *AttributeService) SetManual(ctx context.Context, customerID uuid.UUID, key string, value interface{}) (*models.CustomerAttribute, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	key, err = normalizeAttributeKey(key)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Customers.GetByID(ctx, userID, customerID); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: attribute value is not serializable", models.ErrValidation)
	}

	attr := &models.CustomerAttribute{
		CustomerID: customerID,
		Key:        key,
		Value:      datatypes.JSON(raw),
		Source:     models.AttributeManual,
	}
	if err := s.store.Attributes.Upsert(ctx, userID, attr); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, userID, "customer_attribute", attr.ID, "set", map[string]FieldChange{
		"key":   {Old: nil, New: key},
		"value": {Old: nil, New: string(raw)},
	})
	return attr, nil
}

// ApplyExtracted writes a model-extracted value unless a manual value
// already holds the key.
func (s *AttributeService) ApplyExtracted(ctx context.Context, customerID uuid.UUID, key string, value interface{}, confidence float64, sourceNoteID *uuid.UUID) (*models.CustomerAttribute, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	key, err = normalizeAttributeKey(key)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.Attributes.GetByCustomerAndKey(ctx, userID, customerID, key)
	if err == nil && existing.Source == models.AttributeManual {
		return existing, nil
	}
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: attribute value is not serializable", models.ErrValidation)
	}
	attr := &models.CustomerAttribute{
		CustomerID:   customerID,
		Key:          key,
		Value:        datatypes.JSON(raw),
		Source:       models.AttributeExtracted,
		Confidence:   &confidence,
		SourceNoteID: sourceNoteID,
	}
	if err := s.store.Attributes.Upsert(ctx, userID, attr); err != nil {
		return nil, err
	}
	return attr, nil
}

func (s *AttributeService) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CustomerAttribute, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Customers.GetByID(ctx, userID, customerID); err != nil {
		return nil, err
	}
	return s.store.Attributes.ListByCustomer(ctx, userID, customerID)
}

func (s *AttributeService) Delete(ctx context.Context, customerID uuid.UUID, key string) error {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return err
	}
	key, err = normalizeAttributeKey(key)
	if err != nil {
		return err
	}
	if err := s.store.Attributes.Delete(ctx, userID, customerID, key); err != nil {
		return err
	}
	s.audit.Record(ctx, userID, "customer_attribute", customerID, "deleted", map[string]FieldChange{
		"key": {Old: key, New: nil},
	})
	return nil
}
