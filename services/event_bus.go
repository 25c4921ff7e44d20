package services

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// EventHandler reacts to one event. Returned errors are logged, never
// propagated to the publisher.
type EventHandler func(ctx context.Context, event Event) error

// EventBus is a synchronous in-process dispatcher. Publishing never
// fails the caller: handler errors and panics are logged and swallowed
// so a broken side effect cannot undo a committed state change.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
	logger   *zap.Logger
}

func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
		logger:   logger,
	}
}

func (b *EventBus) Subscribe(eventName string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

func (b *EventBus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.EventName()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.run(ctx, event, handler)
	}
}

func (b *EventBus) run(ctx context.Context, event Event, handler EventHandler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panic",
				zap.String("event", event.EventName()),
				zap.Any("panic", r),
			)
		}
	}()
	if err := handler(ctx, event); err != nil {
		b.logger.Error("event handler failed",
			zap.String("event", event.EventName()),
			zap.Error(err),
		)
	}
}
