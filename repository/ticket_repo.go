package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldpro-backend/models"
)

type TicketRepo struct {
	db *gorm.DB
}

// TicketFilter narrows List results.
type TicketFilter struct {
	Status        models.TicketStatus
	CustomerID    uuid.UUID
	TemplateID    uuid.UUID
	ScheduledFrom *time.Time
	ScheduledTo   *time.Time
	Limit         int
	Offset        int
}

func (r *TicketRepo) Create(ctx context.Context, userID uuid.UUID, ticket *models.Ticket) error {
	ticket.UserID = userID
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *TicketRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.db.WithContext(ctx).
		First(&ticket, "user_id = ? AND id = ?", userID, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &ticket, nil
}

func (r *TicketRepo) GetByIDWithLineItems(ctx context.Context, userID, id uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		Preload("Customer").
		Preload("Address").
		First(&ticket, "user_id = ? AND id = ?", userID, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &ticket, nil
}

func (r *TicketRepo) List(ctx context.Context, userID uuid.UUID, filter TicketFilter) ([]models.Ticket, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != uuid.Nil {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.TemplateID != uuid.Nil {
		q = q.Where("recurring_template_id = ?", filter.TemplateID)
	}
	if filter.ScheduledFrom != nil {
		q = q.Where("scheduled_at >= ?", *filter.ScheduledFrom)
	}
	if filter.ScheduledTo != nil {
		q = q.Where("scheduled_at <= ?", *filter.ScheduledTo)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	var tickets []models.Ticket
	err := q.Order("scheduled_at DESC, created_at DESC").Find(&tickets).Error
	return tickets, err
}

func (r *TicketRepo) Update(ctx context.Context, userID uuid.UUID, ticket *models.Ticket) error {
	if ticket.UserID != userID {
		return models.ErrNotFound
	}
	return r.db.WithContext(ctx).Save(ticket).Error
}

// TransitionStatus applies updates only while the row still holds the
// expected status. Zero rows touched means another writer got there
// first; the caller has already proven the row exists.
func (r *TicketRepo) TransitionStatus(ctx context.Context, userID, id uuid.UUID, from models.TicketStatus, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("user_id = ? AND id = ? AND status = ?", userID, id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrConflict
	}
	return nil
}

// ListScheduledBetween returns open tickets in a scheduling window,
// used by the reminder sweep.
func (r *TicketRepo) ListScheduledBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND scheduled_at BETWEEN ? AND ?",
			userID, models.TicketScheduled, from, to).
		Order("scheduled_at").
		Find(&tickets).Error
	return tickets, err
}

func (r *TicketRepo) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&models.Ticket{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
