package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WaitlistStatus is the state of a waitlist entry.
type WaitlistStatus string

const (
	WaitlistWaiting   WaitlistStatus = "waiting"
	WaitlistScheduled WaitlistStatus = "scheduled"
	WaitlistRemoved   WaitlistStatus = "removed"
)

// WaitlistEntry records a customer asking for an earlier or additional
// slot. Scheduling one links it to the ticket that satisfied it.
type WaitlistEntry struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	CustomerID uuid.UUID  `gorm:"type:uuid;index;not null"`
	ServiceID  *uuid.UUID `gorm:"type:uuid"`

	DesiredFrom *time.Time
	DesiredTo   *time.Time
	Notes       string `gorm:"type:text"`

	Status            WaitlistStatus `gorm:"type:varchar(20);not null;default:'waiting';index"`
	ScheduledTicketID *uuid.UUID     `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (w *WaitlistEntry) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
