package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IntervalType is the calendar unit a recurring template advances by.
type IntervalType string

const (
	IntervalDays   IntervalType = "days"
	IntervalWeeks  IntervalType = "weeks"
	IntervalMonths IntervalType = "months"
)

// RecurringTemplate generates tickets on a schedule. NextOccurrenceAt
// is the due pointer: a sweep materializes a ticket for every active
// template whose pointer is at or before now, then advances the
// pointer. The pointer is advanced with a guarded update so two
// concurrent sweeps cannot double-generate.
type RecurringTemplate struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	CustomerID uuid.UUID  `gorm:"type:uuid;index;not null"`
	Customer   *Customer  `gorm:"foreignKey:CustomerID"`
	AddressID  *uuid.UUID `gorm:"type:uuid"`

	Title       string `gorm:"not null"`
	Description string `gorm:"type:text"`

	IntervalType  IntervalType `gorm:"type:varchar(10);not null"`
	IntervalValue int          `gorm:"not null"`

	// PreferredWeekday snaps weekly occurrences forward to this day
	// (0=Sunday..6=Saturday). PreferredDayOfMonth re-anchors monthly
	// occurrences so a clamped short month does not drift the schedule.
	PreferredWeekday     *int
	PreferredDayOfMonth  *int
	PreferredTimeOfDay   string // "09:00", kept on generated tickets
	EstimatedDurationMin *int

	// Service lines stamped onto each generated ticket.
	Items TemplateItems `gorm:"type:text"`

	IsActive         bool      `gorm:"default:true"`
	NextOccurrenceAt time.Time `gorm:"not null;index"`
	LastGeneratedAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (rt *RecurringTemplate) BeforeCreate(tx *gorm.DB) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	return nil
}

// ValidateSchedule checks the interval fields.
func (rt *RecurringTemplate) ValidateSchedule() error {
	switch rt.IntervalType {
	case IntervalDays, IntervalWeeks, IntervalMonths:
	default:
		return fmt.Errorf("%w: unknown interval type %q", ErrValidation, rt.IntervalType)
	}
	if rt.IntervalValue < 1 {
		return fmt.Errorf("%w: interval value must be at least 1", ErrValidation)
	}
	if rt.PreferredWeekday != nil && (*rt.PreferredWeekday < 0 || *rt.PreferredWeekday > 6) {
		return fmt.Errorf("%w: preferred weekday must be 0..6", ErrValidation)
	}
	if rt.PreferredDayOfMonth != nil && (*rt.PreferredDayOfMonth < 1 || *rt.PreferredDayOfMonth > 31) {
		return fmt.Errorf("%w: preferred day of month must be 1..31", ErrValidation)
	}
	return nil
}
