package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldpro-backend/models"
)

func TestLineItemPerUnitTotal(t *testing.T) {
	env := newTestEnv(t)
	service := env.createPerUnitService("Window Washing", 500)
	ticket := env.createScheduledTicket()

	for _, quantity := range []int64{1, 3, 12} {
		items, err := env.lineItems.Add(env.ctx, ticket.ID, []LineItemInput{
			{ServiceID: &service.ID, Quantity: quantity},
		})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, int64(500), items[0].UnitPriceCents)
		assert.Equal(t, 500*quantity, items[0].TotalCents)
		assert.Equal(t, "Window Washing", items[0].Description)
	}
}

func TestLineItemFixedPricing(t *testing.T) {
	env := newTestEnv(t)
	service := env.createFixedService("Gutter Cleaning", 15000)
	ticket := env.createScheduledTicket()

	items, err := env.lineItems.Add(env.ctx, ticket.ID, []LineItemInput{
		{ServiceID: &service.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15000), items[0].UnitPriceCents)
	assert.Equal(t, int64(1), items[0].Quantity)

	// An override beats the catalog default.
	items, err = env.lineItems.Add(env.ctx, ticket.ID, []LineItemInput{
		{ServiceID: &service.ID, PriceOverrideCents: int64Ptr(12000)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12000), items[0].UnitPriceCents)
}

func TestLineItemFlexibleRequiresPrice(t *testing.T) {
	env := newTestEnv(t)
	service := env.createFlexibleService("Custom Job")
	ticket := env.createScheduledTicket()

	_, err := env.lineItems.Add(env.ctx, ticket.ID, []LineItemInput{
		{ServiceID: &service.ID},
	})
	require.ErrorIs(t, err, models.ErrValidation)

	items, err := env.lineItems.Add(env.ctx, ticket.ID, []LineItemInput{
		{ServiceID: &service.ID, PriceOverrideCents: int64Ptr(9900), Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(19800), items[0].TotalCents)
}

func TestLineItemAdHoc(t *testing.T) {
	env := newTestEnv(t)
	ticket := env.createScheduledTicket()

	// No service and no price is rejected.
	_, err := env.lineItems.Add(env.ctx, ticket.ID, []LineItemInput{
		{Description: "Trip fee"},
	})
	require.ErrorIs(t, err, models.ErrValidation)

	// No description either.
	_, err = env.lineItems.Add(env.ctx, ticket.ID, []LineItemInput{
		{PriceOverrideCents: int64Ptr(2500)},
	})
	require.ErrorIs(t, err, models.ErrValidation)

	items, err := env.lineItems.Add(env.ctx, ticket.ID, []LineItemInput{
		{Description: "Trip fee", PriceOverrideCents: int64Ptr(2500)},
	})
	require.NoError(t, err)
	assert.Nil(t, items[0].ServiceID)
	assert.Equal(t, int64(2500), items[0].TotalCents)
}

func TestLineItemBatchIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	good := env.createFixedService("Gutter Cleaning", 15000)
	bad := env.createFlexibleService("Custom Job")
	ticket := env.createScheduledTicket()

	_, err := env.lineItems.Add(env.ctx, ticket.ID, []LineItemInput{
		{ServiceID: &good.ID},
		{ServiceID: &bad.ID}, // flexible without a price fails
	})
	require.ErrorIs(t, err, models.ErrValidation)

	items, err := env.lineItems.ListByTicket(env.ctx, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, items, "failed batch must not leave partial rows")
}

func TestLineItemRejectsRetiredService(t *testing.T) {
	env := newTestEnv(t)
	service := env.createFixedService("Gutter Cleaning", 15000)
	ticket := env.createScheduledTicket()

	require.NoError(t, env.catalog.Delete(env.ctx, service.ID))

	_, err := env.lineItems.Add(env.ctx, ticket.ID, []LineItemInput{
		{ServiceID: &service.ID},
	})
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestLineItemClosedTicketRejectsMutation(t *testing.T) {
	env := newTestEnv(t)
	service := env.createFixedService("Gutter Cleaning", 15000)
	ticket := env.createScheduledTicket(LineItemInput{ServiceID: &service.ID})
	env.completeTicket(ticket.ID)

	existing, err := env.lineItems.ListByTicket(env.ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, existing, 1)

	_, err = env.lineItems.Add(env.ctx, ticket.ID, []LineItemInput{
		{ServiceID: &service.ID},
	})
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = env.lineItems.Update(env.ctx, existing[0].ID, UpdateLineItemInput{
		Quantity: int64Ptr(5),
	})
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	err = env.lineItems.Remove(env.ctx, existing[0].ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestLineItemUpdateRecomputesTotal(t *testing.T) {
	env := newTestEnv(t)
	service := env.createPerUnitService("Window Washing", 500)
	ticket := env.createScheduledTicket(LineItemInput{ServiceID: &service.ID, Quantity: 4})

	items, err := env.lineItems.ListByTicket(env.ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	updated, err := env.lineItems.Update(env.ctx, items[0].ID, UpdateLineItemInput{
		Quantity:       int64Ptr(10),
		UnitPriceCents: int64Ptr(450),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4500), updated.TotalCents)

	_, err = env.lineItems.Update(env.ctx, items[0].ID, UpdateLineItemInput{
		Quantity: int64Ptr(0),
	})
	require.ErrorIs(t, err, models.ErrValidation)
}
