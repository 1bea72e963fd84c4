package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher fans complaint lifecycle events out to subscribers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
	// SubscribeAll registers a handler that sees every event type.
	SubscribeAll(handler EventHandler)
}

type syncDispatcher struct {
	mu       sync.RWMutex
	byType   map[EventType][]EventHandler
	wildcard []EventHandler
}

// NewInMemoryDispatcher returns a dispatcher that runs handlers on the
// publishing goroutine, typed handlers first and then wildcard ones, each in
// registration order.
func NewInMemoryDispatcher() Dispatcher {
	return &syncDispatcher{byType: make(map[EventType][]EventHandler)}
}

// Publish runs every matching handler even when an earlier one fails or
// panics. The returned error joins all failures.
func (d *syncDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	matched := make([]EventHandler, 0, len(d.byType[event.Type])+len(d.wildcard))
	matched = append(matched, d.byType[event.Type]...)
	matched = append(matched, d.wildcard...)
	d.mu.RUnlock()

	var errs []error
	for i, handler := range matched {
		if err := invoke(ctx, handler, event); err != nil {
			errs = append(errs, fmt.Errorf("%s handler %d: %w", event.Type, i, err))
		}
	}
	return errors.Join(errs...)
}

func (d *syncDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	d.byType[eventType] = append(d.byType[eventType], handler)
	d.mu.Unlock()
}

func (d *syncDispatcher) SubscribeAll(handler EventHandler) {
	d.mu.Lock()
	d.wildcard = append(d.wildcard, handler)
	d.mu.Unlock()
}

func invoke(ctx context.Context, handler EventHandler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return handler(ctx, event)
}
