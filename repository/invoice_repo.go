package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldpro-backend/models"
)

type InvoiceRepo struct {
	db *gorm.DB
}

// InvoiceFilter narrows List results.
type InvoiceFilter struct {
	Status     models.InvoiceStatus
	CustomerID uuid.UUID
	Limit      int
	Offset     int
}

func (r *InvoiceRepo) Create(ctx context.Context, userID uuid.UUID, invoice *models.Invoice) error {
	invoice.UserID = userID
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *InvoiceRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		First(&invoice, "user_id = ? AND id = ?", userID, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &invoice, nil
}

// GetActiveByTicket returns the ticket's authoritative invoice, the
// single one that is not void. Void invoices stay on the books for
// history but never count here.
func (r *InvoiceRepo) GetActiveByTicket(ctx context.Context, userID, ticketID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND ticket_id = ? AND status <> ?", userID, ticketID, models.InvoiceVoid).
		First(&invoice).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &invoice, nil
}

func (r *InvoiceRepo) List(ctx context.Context, userID uuid.UUID, filter InvoiceFilter) ([]models.Invoice, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != uuid.Nil {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	var invoices []models.Invoice
	err := q.Order("created_at DESC").Find(&invoices).Error
	return invoices, err
}

func (r *InvoiceRepo) Update(ctx context.Context, userID uuid.UUID, invoice *models.Invoice) error {
	if invoice.UserID != userID {
		return models.ErrNotFound
	}
	return r.db.WithContext(ctx).Save(invoice).Error
}

// TransitionStatus applies updates only while the row still holds the
// expected status, mirroring the ticket transition guard.
func (r *InvoiceRepo) TransitionStatus(ctx context.Context, userID, id uuid.UUID, from models.InvoiceStatus, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
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

// ApplyPayment applies updates only while the row still holds both the
// observed status and the observed paid amount. Two writers racing from
// the same read cannot both match; the loser gets ErrConflict and must
// re-read.
func (r *InvoiceRepo) ApplyPayment(ctx context.Context, userID, id uuid.UUID, from models.InvoiceStatus, observedPaidCents int64, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("user_id = ? AND id = ? AND status = ? AND paid_cents = ?", userID, id, from, observedPaidCents).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrConflict
	}
	return nil
}

// NextInvoiceNumber issues the day's next INV-YYYYMMDD-NNNN number for
// the account. Call inside the transaction that creates the invoice.
func (r *InvoiceRepo) NextInvoiceNumber(ctx context.Context, userID uuid.UUID, day time.Time) (string, error) {
	prefix := fmt.Sprintf("INV-%s-", day.Format("20060102"))
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Unscoped().
		Where("user_id = ? AND invoice_number LIKE ?", userID, prefix+"%").
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}
