package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a business account - the unit of data isolation. Every
// tenant-scoped table carries a UserID column, and every repository
// method requires the owning user ID as its first argument.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	Email    string    `gorm:"uniqueIndex;not null"`
	Password string    `json:"-"` // bcrypt hash; empty for magic-link-only accounts
	Name     string    `gorm:"not null"`
	Phone    string

	BusinessName string `gorm:"not null"`
	Timezone     string `gorm:"default:'UTC'"`

	// Applied to derived invoices unless overridden per call.
	DefaultTaxRateBps int `gorm:"default:0"`

	LastLogin *time.Time
	IsActive  bool `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
