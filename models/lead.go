package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LeadStatus is the intake pipeline state of a lead.
type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadQualified LeadStatus = "qualified"
	LeadConverted LeadStatus = "converted"
	LeadArchived  LeadStatus = "archived"
)

// Lead is an inbound prospect before it becomes a customer. Raw intake
// text is kept verbatim; structured fields extracted from it land in
// ExtractedData.
type Lead struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name  string
	Phone string
	Email string

	Source  string // "website", "referral", "phone", ...
	Urgency string
	RawText string `gorm:"type:text"`

	Status        LeadStatus     `gorm:"type:varchar(20);not null;default:'new';index"`
	ExtractedData datatypes.JSON `gorm:"type:jsonb"`

	ConvertedCustomerID *uuid.UUID `gorm:"type:uuid"`
	ContactedAt         *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
