package events

import (
	"context"
	"sync"

	"github.com/filmoteka/filmoteka/pkg/logger"
)

// Handler processes a published event. Handler errors are logged, never
// propagated to the publisher.
type Handler func(ctx context.Context, event Event) error

// Bus is an in-process publish/subscribe event bus. It lets callers observe
// catalog mutations (sync audit trail) without coupling the sync engine to
// any particular consumer.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      logger.Logger
	wg       sync.WaitGroup
}

// NewBus creates a new in-process event bus.
func NewBus(log logger.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

// Subscribe registers a handler for a specific event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish delivers an event synchronously to all subscribed handlers.
// A failing handler does not stop delivery to the remaining handlers.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.EventType()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			b.log.Error("event handler failed",
				logger.String("event_type", event.EventType()),
				logger.Error(err))
		}
	}
}

// PublishAsync delivers an event in a separate goroutine.
func (b *Bus) PublishAsync(ctx context.Context, event Event) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.Publish(ctx, event)
	}()
}

// Close waits for in-flight async deliveries to finish.
func (b *Bus) Close() {
	b.wg.Wait()
}
