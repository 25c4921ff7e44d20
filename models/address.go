package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Address is a service location owned by exactly one customer. At most
// one address per customer carries IsPrimary - enforced in the address
// service transactionally, not by a database constraint.
type Address struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null"`

	Label     string
	Street    string `gorm:"not null"`
	Street2   string
	City      string `gorm:"not null"`
	State     string `gorm:"not null"`
	Zip       string `gorm:"not null"`
	Notes     string `gorm:"type:text"`
	IsPrimary bool   `gorm:"default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// OneLine renders the address on a single line for messages and logs.
func (a *Address) OneLine() string {
	line := a.Street
	if a.Street2 != "" {
		line += ", " + a.Street2
	}
	return fmt.Sprintf("%s, %s, %s %s", line, a.City, a.State, a.Zip)
}
