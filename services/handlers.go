package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// RegisterHandlers wires the side effects onto the event bus. Each
// handler runs synchronously after its triggering operation commits;
// failures are the bus's problem (logged, never propagated), so none
// of these can undo the state change that fired them.
func RegisterHandlers(bus *EventBus, messages *MessageService, extraction *ExtractionService, logger *zap.Logger) {
	bus.Subscribe(TicketCreated{}.EventName(), func(ctx context.Context, event Event) error {
		e, ok := event.(TicketCreated)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", event)
		}
		return messages.ScheduleTicketMessages(ctx, e.TicketID)
	})

	bus.Subscribe(TicketRescheduled{}.EventName(), func(ctx context.Context, event Event) error {
		e, ok := event.(TicketRescheduled)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", event)
		}
		return messages.RescheduleTicketMessages(ctx, e.TicketID)
	})

	bus.Subscribe(TicketCancelled{}.EventName(), func(ctx context.Context, event Event) error {
		e, ok := event.(TicketCancelled)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", event)
		}
		return messages.CancelTicketMessages(ctx, e.TicketID)
	})

	bus.Subscribe(TicketCompleted{}.EventName(), func(ctx context.Context, event Event) error {
		e, ok := event.(TicketCompleted)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", event)
		}
		return extraction.ProcessTicketNotes(ctx, e.TicketID)
	})

	bus.Subscribe(InvoicePaid{}.EventName(), func(ctx context.Context, event Event) error {
		e, ok := event.(InvoicePaid)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", event)
		}
		return messages.ScheduleReceipt(ctx, e.CustomerID, e.TotalCents)
	})

	bus.Subscribe(LeadCreated{}.EventName(), func(ctx context.Context, event Event) error {
		e, ok := event.(LeadCreated)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", event)
		}
		return extraction.EnrichLead(ctx, e.LeadID)
	})

	logger.Info("event handlers registered")
}
