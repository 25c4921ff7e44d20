package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a contact the business does work for. Soft-deleted only,
// so historical tickets and invoices keep resolving.
type Customer struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	FirstName    string
	LastName     string
	BusinessName string
	Email        string
	Phone        string

	// Weak reference to the customer who referred this one. No ownership;
	// the referrer may be soft-deleted or missing.
	ReferredBy *uuid.UUID `gorm:"type:uuid"`

	ReferenceID            string
	Notes                  string `gorm:"type:text"`
	PreferredContactMethod string // email, phone, text
	PreferredTimeOfDay     string // morning, afternoon, evening, any

	Addresses []Address `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// DisplayName returns the business name when set, otherwise the joined
// personal name.
func (c *Customer) DisplayName() string {
	if c.BusinessName != "" {
		return c.BusinessName
	}
	parts := make([]string, 0, 2)
	if c.FirstName != "" {
		parts = append(parts, c.FirstName)
	}
	if c.LastName != "" {
		parts = append(parts, c.LastName)
	}
	if len(parts) == 0 {
		return "Unnamed Customer"
	}
	return strings.Join(parts, " ")
}

// HasName reports whether at least one name field is present. Creation
// requires one.
func (c *Customer) HasName() bool {
	return c.FirstName != "" || c.LastName != "" || c.BusinessName != ""
}
