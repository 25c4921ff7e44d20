package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PricingType controls how a catalog service turns into a priced line item.
type PricingType string

const (
	// PricingFixed bills a set price regardless of scope.
	PricingFixed PricingType = "fixed"
	// PricingFlexible takes its price at line item creation.
	PricingFlexible PricingType = "flexible"
	// PricingPerUnit bills unit price times quantity.
	PricingPerUnit PricingType = "per_unit"
)

// Service is a catalog entry. All prices are integer cents. Soft-deleted
// so line items on old tickets keep resolving; deleted services are
// rejected for new line items.
type Service struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name        string      `gorm:"not null"`
	Description string      `gorm:"type:text"`
	PricingType PricingType `gorm:"type:varchar(20);not null"`

	DefaultPriceCents *int64 // required for fixed
	UnitPriceCents    *int64 // required for per_unit
	UnitLabel         string // "window", "sq ft", ...

	DurationMinutes *int
	IsActive        bool `gorm:"default:true"`
	DisplayOrder    int  `gorm:"default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ValidatePricing checks that the price fields match the pricing type.
func (s *Service) ValidatePricing() error {
	switch s.PricingType {
	case PricingFixed:
		if s.DefaultPriceCents == nil {
			return fmt.Errorf("%w: fixed pricing requires default_price_cents", ErrValidation)
		}
	case PricingPerUnit:
		if s.UnitPriceCents == nil {
			return fmt.Errorf("%w: per-unit pricing requires unit_price_cents", ErrValidation)
		}
	case PricingFlexible:
		// No price fields required; the line item supplies the price.
	default:
		return fmt.Errorf("%w: unknown pricing type %q", ErrValidation, s.PricingType)
	}
	return nil
}
