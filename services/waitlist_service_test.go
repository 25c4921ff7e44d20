package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldpro-backend/models"
)

func TestWaitlistScheduleFlow(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer("")

	entry, err := env.waitlist.Add(env.ctx, WaitlistInput{
		CustomerID: customer.ID,
		Notes:      "wants a weekday morning",
	})
	require.NoError(t, err)
	assert.Equal(t, models.WaitlistWaiting, entry.Status)

	at := time.Now().UTC().AddDate(0, 0, 3)
	ticket, err := env.tickets.Create(env.ctx, CreateTicketInput{
		CustomerID:  customer.ID,
		Title:       "Window Cleaning",
		ScheduledAt: &at,
	})
	require.NoError(t, err)

	scheduled, err := env.waitlist.MarkScheduled(env.ctx, entry.ID, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WaitlistScheduled, scheduled.Status)
	require.NotNil(t, scheduled.ScheduledTicketID)
	assert.Equal(t, ticket.ID, *scheduled.ScheduledTicketID)

	// A scheduled entry is settled.
	_, err = env.waitlist.MarkScheduled(env.ctx, entry.ID, ticket.ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)
	_, err = env.waitlist.Remove(env.ctx, entry.ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestWaitlistRejectsForeignTicket(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer("")
	entry, err := env.waitlist.Add(env.ctx, WaitlistInput{CustomerID: customer.ID})
	require.NoError(t, err)

	// Ticket for a different customer cannot settle this entry.
	other := env.createScheduledTicket()
	_, err = env.waitlist.MarkScheduled(env.ctx, entry.ID, other.ID)
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestWaitlistRemove(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer("")
	entry, err := env.waitlist.Add(env.ctx, WaitlistInput{CustomerID: customer.ID})
	require.NoError(t, err)

	removed, err := env.waitlist.Remove(env.ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WaitlistRemoved, removed.Status)
}
