package messaging

import (
	"context"
	"sync"

	"slidecanvas/application/ports"
	"slidecanvas/domain/events"

	"go.uber.org/zap"
)

// Handler reacts to a published event
type Handler func(ctx context.Context, event events.DomainEvent) error

// MemoryBus delivers events to in-process subscribers and keeps a bounded
// history for inspection.
type MemoryBus struct {
	mu         sync.RWMutex
	handlers   map[string][]Handler
	history    []events.DomainEvent
	maxHistory int
	logger     *zap.Logger
}

var _ ports.EventPublisher = (*MemoryBus)(nil)

// NewMemoryBus creates a bus that remembers the last maxHistory events.
// A non-positive maxHistory keeps no history.
func NewMemoryBus(maxHistory int, logger *zap.Logger) *MemoryBus {
	return &MemoryBus{
		handlers:   make(map[string][]Handler),
		maxHistory: maxHistory,
		logger:     logger,
	}
}

// Subscribe registers a handler for an event type; "*" receives every event
func (b *MemoryBus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish delivers events synchronously. Handler failures are logged and do
// not stop delivery to the remaining handlers.
func (b *MemoryBus) Publish(ctx context.Context, domainEvents []events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	b.mu.Lock()
	if b.maxHistory > 0 {
		b.history = append(b.history, domainEvents...)
		if over := len(b.history) - b.maxHistory; over > 0 {
			b.history = append([]events.DomainEvent(nil), b.history[over:]...)
		}
	}
	b.mu.Unlock()

	for _, event := range domainEvents {
		for _, handler := range b.handlersFor(event.GetEventType()) {
			if err := handler(ctx, event); err != nil {
				b.logger.Warn("Event handler failed",
					zap.String("eventType", event.GetEventType()),
					zap.String("aggregateID", event.GetAggregateID()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

func (b *MemoryBus) handlersFor(eventType string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Handler, 0, len(b.handlers[eventType])+len(b.handlers["*"]))
	out = append(out, b.handlers[eventType]...)
	return append(out, b.handlers["*"]...)
}

// Events returns the remembered events, oldest first
func (b *MemoryBus) Events() []events.DomainEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]events.DomainEvent(nil), b.history...)
}

// EventsFor returns the remembered events of one project
func (b *MemoryBus) EventsFor(aggregateID string) []events.DomainEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []events.DomainEvent
	for _, e := range b.history {
		if e.GetAggregateID() == aggregateID {
			out = append(out, e)
		}
	}
	return out
}
