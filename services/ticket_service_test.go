package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldpro-backend/models"
	"fieldpro-backend/repository"
)

func TestTicketHappyPath(t *testing.T) {
	env := newTestEnv(t)
	service := env.createFixedService("Gutter Cleaning", 15000)
	ticket := env.createScheduledTicket(LineItemInput{ServiceID: &service.ID})

	assert.Equal(t, models.TicketScheduled, ticket.Status)
	assert.Equal(t, models.ConfirmationPending, ticket.ConfirmationStatus)
	assert.Nil(t, ticket.ClosedAt)

	ticket, err := env.tickets.ClockIn(env.ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketInProgress, ticket.Status)
	require.NotNil(t, ticket.ClockInAt)
	assert.Nil(t, ticket.ClosedAt)

	ticket, err = env.tickets.Complete(env.ctx, ticket.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.TicketCompleted, ticket.Status)
	require.NotNil(t, ticket.ClockOutAt)
	require.NotNil(t, ticket.ActualDurationMinutes)
	require.NotNil(t, ticket.ClosedAt, "terminal status must set closed_at")
}

func TestTicketCannotCompleteFromScheduled(t *testing.T) {
	env := newTestEnv(t)
	ticket := env.createScheduledTicket()

	_, err := env.tickets.Complete(env.ctx, ticket.ID, nil)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	fresh, err := env.tickets.Get(env.ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketScheduled, fresh.Status)
}

func TestTicketDoubleClockInFails(t *testing.T) {
	env := newTestEnv(t)
	ticket := env.createScheduledTicket()

	_, err := env.tickets.ClockIn(env.ctx, ticket.ID)
	require.NoError(t, err)
	_, err = env.tickets.ClockIn(env.ctx, ticket.ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestTicketClockOutBeforeClockInRejected(t *testing.T) {
	env := newTestEnv(t)
	ticket := env.createScheduledTicket()

	clockedIn, err := env.tickets.ClockIn(env.ctx, ticket.ID)
	require.NoError(t, err)

	early := clockedIn.ClockInAt.Add(-time.Hour)
	_, err = env.tickets.Complete(env.ctx, ticket.ID, &early)
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestTicketCancel(t *testing.T) {
	env := newTestEnv(t)
	ticket := env.createScheduledTicket()

	cancelled, err := env.tickets.Cancel(env.ctx, ticket.ID, "customer moved")
	require.NoError(t, err)
	assert.Equal(t, models.TicketCancelled, cancelled.Status)
	require.NotNil(t, cancelled.ClosedAt)

	// Terminal states do not transition further.
	_, err = env.tickets.Cancel(env.ctx, ticket.ID, "")
	require.ErrorIs(t, err, models.ErrInvalidTransition)
	_, err = env.tickets.ClockIn(env.ctx, ticket.ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestTicketCancelCompletedFails(t *testing.T) {
	env := newTestEnv(t)
	ticket := env.createScheduledTicket()
	env.completeTicket(ticket.ID)

	_, err := env.tickets.Cancel(env.ctx, ticket.ID, "")
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestTicketReopen(t *testing.T) {
	env := newTestEnv(t)
	ticket := env.createScheduledTicket()

	// Open tickets cannot be reopened.
	_, err := env.tickets.Reopen(env.ctx, ticket.ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	env.completeTicket(ticket.ID)

	reopened, err := env.tickets.Reopen(env.ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketInProgress, reopened.Status)
	assert.Nil(t, reopened.ClosedAt, "reopen must clear closed_at")

	// And the ticket is mutable again.
	service := env.createFixedService("Screen Repair", 4500)
	_, err = env.lineItems.Add(env.ctx, ticket.ID, []LineItemInput{
		{ServiceID: &service.ID},
	})
	require.NoError(t, err)
}

func TestTicketUpdateClosedRejected(t *testing.T) {
	env := newTestEnv(t)
	ticket := env.createScheduledTicket()
	env.completeTicket(ticket.ID)

	title := "New Title"
	_, err := env.tickets.Update(env.ctx, ticket.ID, UpdateTicketInput{Title: &title})
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestTicketConfirmationOneShot(t *testing.T) {
	env := newTestEnv(t)
	ticket := env.createScheduledTicket()

	confirmed, err := env.tickets.SetConfirmation(env.ctx, ticket.ID, models.ConfirmationConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.ConfirmationConfirmed, confirmed.ConfirmationStatus)

	// Repeating the same answer is a no-op, changing it is not allowed.
	_, err = env.tickets.SetConfirmation(env.ctx, ticket.ID, models.ConfirmationConfirmed)
	require.NoError(t, err)
	_, err = env.tickets.SetConfirmation(env.ctx, ticket.ID, models.ConfirmationDeclined)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = env.tickets.SetConfirmation(env.ctx, ticket.ID, models.ConfirmationStatus("maybe"))
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestTicketCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer("")

	_, err := env.tickets.Create(env.ctx, CreateTicketInput{
		CustomerID: customer.ID,
		Title:      "   ",
	})
	require.ErrorIs(t, err, models.ErrValidation)

	// Unknown customer reads as not found.
	_, err = env.tickets.Create(env.ctx, CreateTicketInput{
		CustomerID: uuid.New(),
		Title:      "Window Cleaning",
	})
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestTicketCreateWithItemsIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer("")
	flexible := env.createFlexibleService("Custom Job")

	_, err := env.tickets.Create(env.ctx, CreateTicketInput{
		CustomerID: customer.ID,
		Title:      "Window Cleaning",
		Items: []LineItemInput{
			{ServiceID: &flexible.ID}, // missing required price
		},
	})
	require.ErrorIs(t, err, models.ErrValidation)

	tickets, err := env.tickets.List(env.ctx, repository.TicketFilter{})
	require.NoError(t, err)
	assert.Empty(t, tickets, "failed creation must not leave a ticket behind")
}

func TestTicketDeleteClosedRejected(t *testing.T) {
	env := newTestEnv(t)
	ticket := env.createScheduledTicket()
	env.completeTicket(ticket.ID)

	err := env.tickets.Delete(env.ctx, ticket.ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}
