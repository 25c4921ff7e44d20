package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fieldpro-backend/models"
)

// recordingGateway captures outbound texts and can be told to fail.
type recordingGateway struct {
	mu   sync.Mutex
	sent []string
	fail error
}

func (g *recordingGateway) SendSMS(to, body string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return g.fail
	}
	g.sent = append(g.sent, to+": "+body)
	return nil
}

func (g *recordingGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}

func newMessageService(env *testEnv, gateway SMSGateway) *MessageService {
	return NewMessageService(env.store, gateway, env.audit, zap.NewNop())
}

func TestScheduleTicketMessages(t *testing.T) {
	env := newTestEnv(t)
	messages := newMessageService(env, &recordingGateway{})

	customer := env.createCustomer("+15551230001")
	at := time.Now().UTC().AddDate(0, 0, 7)
	ticket, err := env.tickets.Create(env.ctx, CreateTicketInput{
		CustomerID:  customer.ID,
		Title:       "Window Cleaning",
		ScheduledAt: &at,
	})
	require.NoError(t, err)

	require.NoError(t, messages.ScheduleTicketMessages(env.ctx, ticket.ID))

	queued, err := messages.ListByCustomer(env.ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, queued, 2, "confirmation plus day-before reminder")

	types := map[models.MessageType]bool{}
	for _, msg := range queued {
		assert.Equal(t, models.MessagePending, msg.Status)
		assert.Equal(t, "+15551230001", msg.ToPhone)
		types[msg.Type] = true
	}
	assert.True(t, types[models.MessageAppointmentConfirmation])
	assert.True(t, types[models.MessageAppointmentReminder])
}

func TestScheduleTicketMessagesNoPhoneQueuesNothing(t *testing.T) {
	env := newTestEnv(t)
	messages := newMessageService(env, &recordingGateway{})
	ticket := env.createScheduledTicket()

	require.NoError(t, messages.ScheduleTicketMessages(env.ctx, ticket.ID))

	queued, err := messages.ListByCustomer(env.ctx, ticket.CustomerID)
	require.NoError(t, err)
	assert.Empty(t, queued)
}

func TestScheduleTicketMessagesImminentVisitSkipsReminder(t *testing.T) {
	env := newTestEnv(t)
	messages := newMessageService(env, &recordingGateway{})

	customer := env.createCustomer("+15551230001")
	at := time.Now().UTC().Add(2 * time.Hour)
	ticket, err := env.tickets.Create(env.ctx, CreateTicketInput{
		CustomerID:  customer.ID,
		Title:       "Window Cleaning",
		ScheduledAt: &at,
	})
	require.NoError(t, err)

	require.NoError(t, messages.ScheduleTicketMessages(env.ctx, ticket.ID))

	queued, err := messages.ListByCustomer(env.ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, models.MessageAppointmentConfirmation, queued[0].Type)
}

func TestCancelTicketMessages(t *testing.T) {
	env := newTestEnv(t)
	messages := newMessageService(env, &recordingGateway{})

	customer := env.createCustomer("+15551230001")
	at := time.Now().UTC().AddDate(0, 0, 7)
	ticket, err := env.tickets.Create(env.ctx, CreateTicketInput{
		CustomerID:  customer.ID,
		Title:       "Window Cleaning",
		ScheduledAt: &at,
	})
	require.NoError(t, err)
	require.NoError(t, messages.ScheduleTicketMessages(env.ctx, ticket.ID))

	require.NoError(t, messages.CancelTicketMessages(env.ctx, ticket.ID))

	queued, err := messages.ListByCustomer(env.ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, queued, 2)
	for _, msg := range queued {
		assert.Equal(t, models.MessageCancelled, msg.Status)
	}
}

func TestDispatchDueSendsAndClaims(t *testing.T) {
	env := newTestEnv(t)
	gateway := &recordingGateway{}
	messages := newMessageService(env, gateway)

	customer := env.createCustomer("+15551230001")
	_, err := messages.ScheduleCustom(env.ctx, CustomMessageInput{
		CustomerID: customer.ID,
		Body:       "We are running 15 minutes late.",
		SendAt:     time.Now().UTC().Add(-time.Minute),
	})
	require.NoError(t, err)

	sent, err := messages.DispatchDue(env.ctx, time.Now().UTC(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, gateway.count())

	// Already claimed; the next sweep finds nothing.
	sent, err = messages.DispatchDue(env.ctx, time.Now().UTC(), 100)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 1, gateway.count())

	queued, err := messages.ListByCustomer(env.ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, models.MessageSent, queued[0].Status)
	require.NotNil(t, queued[0].SentAt)
}

func TestDispatchDueRecordsGatewayFailure(t *testing.T) {
	env := newTestEnv(t)
	gateway := &recordingGateway{fail: errors.New("carrier rejected")}
	messages := newMessageService(env, gateway)

	customer := env.createCustomer("+15551230001")
	_, err := messages.ScheduleCustom(env.ctx, CustomMessageInput{
		CustomerID: customer.ID,
		Body:       "We are running 15 minutes late.",
		SendAt:     time.Now().UTC().Add(-time.Minute),
	})
	require.NoError(t, err)

	sent, err := messages.DispatchDue(env.ctx, time.Now().UTC(), 100)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	queued, err := messages.ListByCustomer(env.ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, models.MessageFailed, queued[0].Status)
	assert.Equal(t, "carrier rejected", queued[0].FailReason)
	assert.Nil(t, queued[0].SentAt)
}

func TestDispatchDueLeavesFutureMessages(t *testing.T) {
	env := newTestEnv(t)
	gateway := &recordingGateway{}
	messages := newMessageService(env, gateway)

	customer := env.createCustomer("+15551230001")
	_, err := messages.ScheduleCustom(env.ctx, CustomMessageInput{
		CustomerID: customer.ID,
		Body:       "See you next week!",
		SendAt:     time.Now().UTC().AddDate(0, 0, 6),
	})
	require.NoError(t, err)

	sent, err := messages.DispatchDue(env.ctx, time.Now().UTC(), 100)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 0, gateway.count())
}

func TestDispatchDueWithoutGatewayLeavesPending(t *testing.T) {
	env := newTestEnv(t)
	messages := newMessageService(env, nil)

	customer := env.createCustomer("+15551230001")
	_, err := messages.ScheduleCustom(env.ctx, CustomMessageInput{
		CustomerID: customer.ID,
		Body:       "We are running late.",
		SendAt:     time.Now().UTC().Add(-time.Minute),
	})
	require.NoError(t, err)

	sent, err := messages.DispatchDue(env.ctx, time.Now().UTC(), 100)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	queued, err := messages.ListByCustomer(env.ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, models.MessagePending, queued[0].Status)
}

// Event wiring: lifecycle transitions drive the message queue without
// the caller touching MessageService directly.
func TestHandlersWireTicketLifecycleToMessages(t *testing.T) {
	env := newTestEnv(t)
	messages := newMessageService(env, &recordingGateway{})
	extraction := NewExtractionService(env.store, env.attributes, nil, zap.NewNop())
	RegisterHandlers(env.bus, messages, extraction, zap.NewNop())

	customer := env.createCustomer("+15551230001")
	at := time.Now().UTC().AddDate(0, 0, 7)
	ticket, err := env.tickets.Create(env.ctx, CreateTicketInput{
		CustomerID:  customer.ID,
		Title:       "Window Cleaning",
		ScheduledAt: &at,
	})
	require.NoError(t, err)

	queued, err := messages.ListByCustomer(env.ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, queued, 2, "creation event queues confirmation and reminder")

	_, err = env.tickets.Cancel(env.ctx, ticket.ID, "customer called")
	require.NoError(t, err)

	queued, err = messages.ListByCustomer(env.ctx, customer.ID)
	require.NoError(t, err)
	for _, msg := range queued {
		assert.Equal(t, models.MessageCancelled, msg.Status)
	}
}
