package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TicketStatus is the lifecycle state of a job ticket.
type TicketStatus string

const (
	TicketScheduled  TicketStatus = "scheduled"
	TicketInProgress TicketStatus = "in_progress"
	TicketCompleted  TicketStatus = "completed"
	TicketCancelled  TicketStatus = "cancelled"
)

// IsTerminal reports whether the status closes the ticket.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketCompleted || s == TicketCancelled
}

// ConfirmationStatus tracks the customer's answer to the visit,
// independent of the work status.
type ConfirmationStatus string

const (
	ConfirmationPending             ConfirmationStatus = "pending"
	ConfirmationConfirmed           ConfirmationStatus = "confirmed"
	ConfirmationDeclined            ConfirmationStatus = "declined"
	ConfirmationRescheduleRequested ConfirmationStatus = "reschedule_requested"
)

// Ticket is a scheduled unit of work for a customer. ClosedAt is set
// exactly when the status is terminal; closed tickets reject field
// edits and line item changes until explicitly reopened.
type Ticket struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	CustomerID uuid.UUID  `gorm:"type:uuid;index;not null"`
	Customer   *Customer  `gorm:"foreignKey:CustomerID"`
	AddressID  *uuid.UUID `gorm:"type:uuid"`
	Address    *Address   `gorm:"foreignKey:AddressID"`

	Title       string `gorm:"not null"`
	Description string `gorm:"type:text"`

	Status             TicketStatus       `gorm:"type:varchar(20);not null;default:'scheduled';index"`
	ConfirmationStatus ConfirmationStatus `gorm:"type:varchar(30);not null;default:'pending'"`

	ScheduledAt              *time.Time `gorm:"index"`
	EstimatedDurationMinutes *int
	IsPriceEstimated         bool `gorm:"default:false"`

	ClockInAt             *time.Time
	ClockOutAt            *time.Time
	ActualDurationMinutes *int

	ClosedAt *time.Time

	// Set when the ticket was materialized from a recurring template.
	RecurringTemplateID *uuid.UUID `gorm:"type:uuid;index"`

	LineItems []LineItem `gorm:"foreignKey:TicketID"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// IsClosed reports whether the ticket is in a terminal state.
func (t *Ticket) IsClosed() bool {
	return t.Status.IsTerminal()
}
