package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestEventBusDispatchesInOrder(t *testing.T) {
	bus := NewEventBus(zap.NewNop())

	var got []string
	bus.Subscribe(TicketCreated{}.EventName(), func(ctx context.Context, event Event) error {
		got = append(got, "first")
		return nil
	})
	bus.Subscribe(TicketCreated{}.EventName(), func(ctx context.Context, event Event) error {
		got = append(got, "second")
		return nil
	})

	bus.Publish(context.Background(), TicketCreated{TicketID: uuid.New()})
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestEventBusSwallowsHandlerFailures(t *testing.T) {
	bus := NewEventBus(zap.NewNop())

	ran := false
	bus.Subscribe(TicketCompleted{}.EventName(), func(ctx context.Context, event Event) error {
		return errors.New("boom")
	})
	bus.Subscribe(TicketCompleted{}.EventName(), func(ctx context.Context, event Event) error {
		panic("worse")
	})
	bus.Subscribe(TicketCompleted{}.EventName(), func(ctx context.Context, event Event) error {
		ran = true
		return nil
	})

	// Publish must not panic or fail the caller; later handlers still run.
	bus.Publish(context.Background(), TicketCompleted{TicketID: uuid.New()})
	assert.True(t, ran)
}

func TestEventBusIgnoresUnknownEvents(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	bus.Publish(context.Background(), InvoicePaid{InvoiceID: uuid.New()})
}
