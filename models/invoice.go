package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceStatus is the payment lifecycle of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePartial InvoiceStatus = "partial"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceVoid    InvoiceStatus = "void"
)

// Invoice is a billing snapshot derived from a completed ticket. Once
// sent, its amounts are frozen; corrections go through void and
// re-derive. All amounts are integer cents.
type Invoice struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_user_number"`

	TicketID   uuid.UUID `gorm:"type:uuid;index;not null"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null"`
	Customer   *Customer `gorm:"foreignKey:CustomerID"`

	InvoiceNumber string        `gorm:"not null;uniqueIndex:idx_invoices_user_number"`
	Status        InvoiceStatus `gorm:"type:varchar(20);not null;default:'draft';index"`

	SubtotalCents int64 `gorm:"not null"`
	TaxRateBps    int64 `gorm:"not null"`
	TaxCents      int64 `gorm:"not null"`
	TotalCents    int64 `gorm:"not null"`
	PaidCents     int64 `gorm:"not null;default:0"`

	SentAt *time.Time
	PaidAt *time.Time
	DueAt  *time.Time

	Notes string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// BalanceDueCents is the unpaid remainder, never negative.
func (i *Invoice) BalanceDueCents() int64 {
	due := i.TotalCents - i.PaidCents
	if due < 0 {
		return 0
	}
	return due
}

// IsOpen reports whether the invoice can still take payments.
func (i *Invoice) IsOpen() bool {
	return i.Status == InvoiceSent || i.Status == InvoicePartial
}
