package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePricing(t *testing.T) {
	price := int64(15000)

	fixed := Service{PricingType: PricingFixed}
	require.ErrorIs(t, fixed.ValidatePricing(), ErrValidation)
	fixed.DefaultPriceCents = &price
	require.NoError(t, fixed.ValidatePricing())

	perUnit := Service{PricingType: PricingPerUnit}
	require.ErrorIs(t, perUnit.ValidatePricing(), ErrValidation)
	perUnit.UnitPriceCents = &price
	require.NoError(t, perUnit.ValidatePricing())

	flexible := Service{PricingType: PricingFlexible}
	require.NoError(t, flexible.ValidatePricing(), "flexible carries no catalog price")

	unknown := Service{PricingType: PricingType("hourly")}
	require.ErrorIs(t, unknown.ValidatePricing(), ErrValidation)
}

func TestTicketStatusTerminal(t *testing.T) {
	assert.False(t, TicketScheduled.IsTerminal())
	assert.False(t, TicketInProgress.IsTerminal())
	assert.True(t, TicketCompleted.IsTerminal())
	assert.True(t, TicketCancelled.IsTerminal())
}
