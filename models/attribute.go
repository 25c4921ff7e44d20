package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AttributeSource records how an attribute value was produced.
type AttributeSource string

const (
	AttributeManual    AttributeSource = "manual"
	AttributeExtracted AttributeSource = "llm_extracted"
)

// CustomerAttribute is one key on a customer's profile, e.g.
// "gate_code" or "dog_name". One row per (customer, key); writes
// upsert in place and manual values win over extracted ones.
type CustomerAttribute struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	CustomerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_customer_attr_key"`
	Key        string    `gorm:"not null;uniqueIndex:idx_customer_attr_key"`

	Value      datatypes.JSON  `gorm:"type:jsonb;not null"`
	Source     AttributeSource `gorm:"type:varchar(20);not null;default:'manual'"`
	Confidence *float64

	// Note the value was extracted from, when Source is llm_extracted.
	SourceNoteID *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *CustomerAttribute) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
