package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Note is free-form text attached to a customer, optionally pinned to
// a ticket. Notes feed attribute extraction.
type Note struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	CustomerID uuid.UUID  `gorm:"type:uuid;index;not null"`
	TicketID   *uuid.UUID `gorm:"type:uuid;index"`

	Content string `gorm:"type:text;not null"`

	// Set once attribute extraction has consumed the note, so a sweep
	// never re-processes it.
	ExtractionProcessedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
