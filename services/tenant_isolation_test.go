package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldpro-backend/models"
	"fieldpro-backend/repository"
	"fieldpro-backend/utils"
)

func TestMissingUserContextFailsClosed(t *testing.T) {
	env := newTestEnv(t)
	bare := context.Background()

	_, err := env.customers.List(bare, repository.CustomerFilter{})
	require.ErrorIs(t, err, utils.ErrNoUserContext)
	_, err = env.tickets.List(bare, repository.TicketFilter{})
	require.ErrorIs(t, err, utils.ErrNoUserContext)
	_, err = env.invoices.List(bare, repository.InvoiceFilter{})
	require.ErrorIs(t, err, utils.ErrNoUserContext)
	_, err = env.recurrence.MaterializeDue(bare, time.Now().UTC())
	require.ErrorIs(t, err, utils.ErrNoUserContext)
}

func TestCrossTenantReadsAreNotFound(t *testing.T) {
	env := newTestEnv(t)
	service := env.createFixedService("Gutter Cleaning", 15000)
	ticket := env.createScheduledTicket(LineItemInput{ServiceID: &service.ID})
	customerID := ticket.CustomerID
	env.completeTicket(ticket.ID)
	invoice, err := env.invoices.Derive(env.ctx, ticket.ID)
	require.NoError(t, err)

	otherID := env.createUser("rival@example.com", 0)
	otherCtx := utils.WithUserID(context.Background(), otherID)

	_, err = env.customers.Get(otherCtx, customerID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = env.tickets.Get(otherCtx, ticket.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = env.invoices.Get(otherCtx, invoice.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = env.catalog.Get(otherCtx, service.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCrossTenantWritesAreNotFound(t *testing.T) {
	env := newTestEnv(t)
	ticket := env.createScheduledTicket()

	otherID := env.createUser("rival@example.com", 0)
	otherCtx := utils.WithUserID(context.Background(), otherID)

	// Existence is not leaked: mutations read as not found, never as
	// forbidden.
	_, err := env.tickets.ClockIn(otherCtx, ticket.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = env.tickets.Cancel(otherCtx, ticket.ID, "")
	assert.ErrorIs(t, err, models.ErrNotFound)
	err = env.tickets.Delete(otherCtx, ticket.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	fresh, err := env.tickets.Get(env.ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketScheduled, fresh.Status)
}

func TestListsAreTenantScoped(t *testing.T) {
	env := newTestEnv(t)
	env.createCustomer("")
	env.createCustomer("")

	otherID := env.createUser("rival@example.com", 0)
	otherCtx := utils.WithUserID(context.Background(), otherID)

	mine, err := env.customers.List(env.ctx, repository.CustomerFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	theirs, err := env.customers.List(otherCtx, repository.CustomerFilter{})
	require.NoError(t, err)
	assert.Empty(t, theirs)
}
