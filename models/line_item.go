package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LineItem is a priced entry on a ticket. Prices are captured in cents
// at creation time; later catalog edits never change an existing line.
type LineItem struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	TicketID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	ServiceID *uuid.UUID `gorm:"type:uuid"`
	Service   *Service   `gorm:"foreignKey:ServiceID"`

	Description string `gorm:"not null"`
	Quantity    int64  `gorm:"not null;default:1"`

	// UnitPriceCents is what one unit costs at the moment the line was
	// priced; TotalCents is always unit times quantity.
	UnitPriceCents int64 `gorm:"not null"`
	TotalCents     int64 `gorm:"not null"`

	DurationMinutes *int

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (li *LineItem) BeforeCreate(tx *gorm.DB) error {
	if li.ID == uuid.Nil {
		li.ID = uuid.New()
	}
	return nil
}
