package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldpro-backend/models"
)

type AddressRepo struct {
	db *gorm.DB
}

func (r *AddressRepo) Create(ctx context.Context, userID uuid.UUID, address *models.Address) error {
	address.UserID = userID
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *AddressRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		First(&address, "user_id = ? AND id = ?", userID, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &address, nil
}

func (r *AddressRepo) ListByCustomer(ctx context.Context, userID, customerID uuid.UUID) ([]models.Address, error) {
	var addresses []models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND customer_id = ?", userID, customerID).
		Order("is_primary DESC, created_at").
		Find(&addresses).Error
	return addresses, err
}

func (r *AddressRepo) Update(ctx context.Context, userID uuid.UUID, address *models.Address) error {
	if address.UserID != userID {
		return models.ErrNotFound
	}
	return r.db.WithContext(ctx).Save(address).Error
}

// ClearPrimary unsets the primary flag on every address of a customer.
// Callers run it in the same transaction that sets the new primary.
func (r *AddressRepo) ClearPrimary(ctx context.Context, userID, customerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("user_id = ? AND customer_id = ? AND is_primary = ?", userID, customerID, true).
		Update("is_primary", false).Error
}

func (r *AddressRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&models.Address{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
