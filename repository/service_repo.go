package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldpro-backend/models"
)

type ServiceRepo struct {
	db *gorm.DB
}

func (r *ServiceRepo) Create(ctx context.Context, userID uuid.UUID, service *models.Service) error {
	service.UserID = userID
	return r.db.WithContext(ctx).Create(service).Error
}

func (r *ServiceRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Service, error) {
	var service models.Service
	err := r.db.WithContext(ctx).
		First(&service, "user_id = ? AND id = ?", userID, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &service, nil
}

// GetByIDUnscoped resolves deleted catalog entries for display on old
// tickets. New line items must go through GetByID.
func (r *ServiceRepo) GetByIDUnscoped(ctx context.Context, userID, id uuid.UUID) (*models.Service, error) {
	var service models.Service
	err := r.db.WithContext(ctx).Unscoped().
		First(&service, "user_id = ? AND id = ?", userID, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &service, nil
}

func (r *ServiceRepo) List(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]models.Service, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var services []models.Service
	err := q.Order("display_order, name").Find(&services).Error
	return services, err
}

func (r *ServiceRepo) Update(ctx context.Context, userID uuid.UUID, service *models.Service) error {
	if service.UserID != userID {
		return models.ErrNotFound
	}
	return r.db.WithContext(ctx).Save(service).Error
}

func (r *ServiceRepo) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&models.Service{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
