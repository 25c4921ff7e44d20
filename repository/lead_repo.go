package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldpro-backend/models"
)

type LeadRepo struct {
	db *gorm.DB
}

func (r *LeadRepo) Create(ctx context.Context, userID uuid.UUID, lead *models.Lead) error {
	lead.UserID = userID
	return r.db.WithContext(ctx).Create(lead).Error
}

func (r *LeadRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.WithContext(ctx).
		First(&lead, "user_id = ? AND id = ?", userID, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &lead, nil
}

func (r *LeadRepo) List(ctx context.Context, userID uuid.UUID, status models.LeadStatus, limit, offset int) ([]models.Lead, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	var leads []models.Lead
	err := q.Order("created_at DESC").Find(&leads).Error
	return leads, err
}

func (r *LeadRepo) Update(ctx context.Context, userID uuid.UUID, lead *models.Lead) error {
	if lead.UserID != userID {
		return models.ErrNotFound
	}
	return r.db.WithContext(ctx).Save(lead).Error
}

func (r *LeadRepo) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&models.Lead{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
