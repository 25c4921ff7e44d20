package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldpro-backend/models"
)

type CustomerRepo struct {
	db *gorm.DB
}

// CustomerFilter narrows List results.
type CustomerFilter struct {
	Search string
	Limit  int
	Offset int
}

func (r *CustomerRepo) Create(ctx context.Context, userID uuid.UUID, customer *models.Customer) error {
	customer.UserID = userID
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *CustomerRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Preload("Addresses").
		First(&customer, "user_id = ? AND id = ?", userID, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &customer, nil
}

// GetByIDUnscoped resolves soft-deleted customers too. Used when
// rendering history that must keep naming people who were since
// removed, never for new writes.
func (r *CustomerRepo) GetByIDUnscoped(ctx context.Context, userID, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).Unscoped().
		First(&customer, "user_id = ? AND id = ?", userID, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &customer, nil
}

func (r *CustomerRepo) List(ctx context.Context, userID uuid.UUID, filter CustomerFilter) ([]models.Customer, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(business_name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?",
			like, like, like, like, like,
		)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	var customers []models.Customer
	err := q.Order("created_at DESC").Find(&customers).Error
	return customers, err
}

func (r *CustomerRepo) Update(ctx context.Context, userID uuid.UUID, customer *models.Customer) error {
	if customer.UserID != userID {
		return models.ErrNotFound
	}
	return r.db.WithContext(ctx).Save(customer).Error
}

func (r *CustomerRepo) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&models.Customer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
