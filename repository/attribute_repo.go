package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldpro-backend/models"
)

type AttributeRepo struct {
	db *gorm.DB
}

func (r *AttributeRepo) GetByCustomerAndKey(ctx context.Context, userID, customerID uuid.UUID, key string) (*models.CustomerAttribute, error) {
	var attr models.CustomerAttribute
	err := r.db.WithContext(ctx).
		First(&attr, "user_id = ? AND customer_id = ? AND key = ?", userID, customerID, key).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &attr, nil
}

func (r *AttributeRepo) ListByCustomer(ctx context.Context, userID, customerID uuid.UUID) ([]models.CustomerAttribute, error) {
	var attrs []models.CustomerAttribute
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND customer_id = ?", userID, customerID).
		Order("key").
		Find(&attrs).Error
	return attrs, err
}

// Upsert writes the attribute in place, one row per (customer, key).
func (r *AttributeRepo) Upsert(ctx context.Context, userID uuid.UUID, attr *models.CustomerAttribute) error {
	attr.UserID = userID
	existing, err := r.GetByCustomerAndKey(ctx, userID, attr.CustomerID, attr.Key)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return r.db.WithContext(ctx).Create(attr).Error
		}
		return err
	}
	existing.Value = attr.Value
	existing.Source = attr.Source
	existing.Confidence = attr.Confidence
	existing.SourceNoteID = attr.SourceNoteID
	if err := r.db.WithContext(ctx).Save(existing).Error; err != nil {
		return err
	}
	*attr = *existing
	return nil
}

func (r *AttributeRepo) Delete(ctx context.Context, userID, customerID uuid.UUID, key string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND customer_id = ? AND key = ?", userID, customerID, key).
		Delete(&models.CustomerAttribute{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
