package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldpro-backend/models"
)

type WaitlistRepo struct {
	db *gorm.DB
}

func (r *WaitlistRepo) Create(ctx context.Context, userID uuid.UUID, entry *models.WaitlistEntry) error {
	entry.UserID = userID
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *WaitlistRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	err := r.db.WithContext(ctx).
		First(&entry, "user_id = ? AND id = ?", userID, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &entry, nil
}

func (r *WaitlistRepo) List(ctx context.Context, userID uuid.UUID, status models.WaitlistStatus) ([]models.WaitlistEntry, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var entries []models.WaitlistEntry
	err := q.Order("created_at").Find(&entries).Error
	return entries, err
}

func (r *WaitlistRepo) Update(ctx context.Context, userID uuid.UUID, entry *models.WaitlistEntry) error {
	if entry.UserID != userID {
		return models.ErrNotFound
	}
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *WaitlistRepo) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&models.WaitlistEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
