package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldpro-backend/models"
)

type LineItemRepo struct {
	db *gorm.DB
}

func (r *LineItemRepo) Create(ctx context.Context, userID uuid.UUID, item *models.LineItem) error {
	item.UserID = userID
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *LineItemRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.LineItem, error) {
	var item models.LineItem
	err := r.db.WithContext(ctx).
		First(&item, "user_id = ? AND id = ?", userID, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// ListByTicket returns the live lines of a ticket. Soft-deleted lines
// stay out, which is what keeps invoice subtotals honest.
func (r *LineItemRepo) ListByTicket(ctx context.Context, userID, ticketID uuid.UUID) ([]models.LineItem, error) {
	var items []models.LineItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND ticket_id = ?", userID, ticketID).
		Order("created_at").
		Find(&items).Error
	return items, err
}

func (r *LineItemRepo) Update(ctx context.Context, userID uuid.UUID, item *models.LineItem) error {
	if item.UserID != userID {
		return models.ErrNotFound
	}
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *LineItemRepo) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&models.LineItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
