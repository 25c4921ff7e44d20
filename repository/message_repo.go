package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldpro-backend/models"
)

type MessageRepo struct {
	db *gorm.DB
}

func (r *MessageRepo) Create(ctx context.Context, userID uuid.UUID, msg *models.ScheduledMessage) error {
	msg.UserID = userID
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *MessageRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.ScheduledMessage, error) {
	var msg models.ScheduledMessage
	err := r.db.WithContext(ctx).
		First(&msg, "user_id = ? AND id = ?", userID, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &msg, nil
}

func (r *MessageRepo) ListByCustomer(ctx context.Context, userID, customerID uuid.UUID) ([]models.ScheduledMessage, error) {
	var msgs []models.ScheduledMessage
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND customer_id = ?", userID, customerID).
		Order("send_at DESC").
		Find(&msgs).Error
	return msgs, err
}

// ListDue returns pending messages whose send time has arrived.
func (r *MessageRepo) ListDue(ctx context.Context, userID uuid.UUID, asOf time.Time, limit int) ([]models.ScheduledMessage, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND send_at <= ?", userID, models.MessagePending, asOf).
		Order("send_at")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var msgs []models.ScheduledMessage
	err := q.Find(&msgs).Error
	return msgs, err
}

// Claim flips one pending message to the given status. Two dispatcher
// sweeps racing the same row: one claims it, the other sees conflict
// and moves on, so nobody texts a customer twice.
func (r *MessageRepo) Claim(ctx context.Context, userID, id uuid.UUID, to models.MessageStatus, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to
	res := r.db.WithContext(ctx).
		Model(&models.ScheduledMessage{}).
		Where("user_id = ? AND id = ? AND status = ?", userID, id, models.MessagePending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrConflict
	}
	return nil
}

// CancelPendingByTicket cancels every pending message hanging off a
// ticket. Returns how many were cancelled.
func (r *MessageRepo) CancelPendingByTicket(ctx context.Context, userID, ticketID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ScheduledMessage{}).
		Where("user_id = ? AND ticket_id = ? AND status = ?", userID, ticketID, models.MessagePending).
		Update("status", models.MessageCancelled)
	return res.RowsAffected, res.Error
}

func (r *MessageRepo) Update(ctx context.Context, userID uuid.UUID, msg *models.ScheduledMessage) error {
	if msg.UserID != userID {
		return models.ErrNotFound
	}
	return r.db.WithContext(ctx).Save(msg).Error
}
