package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher publishes events to the handlers subscribed to their type.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// syncDispatcher runs handlers on the publishing goroutine, in subscription order.
type syncDispatcher struct {
	mu       sync.RWMutex
	handlers map[EventType][]EventHandler
	now      func() time.Time
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() Dispatcher {
	return &syncDispatcher{
		handlers: make(map[EventType][]EventHandler),
		now:      time.Now,
	}
}

// Publish stamps the event with an id and time when missing and hands it to every
// subscriber. A failing or panicking handler does not stop the others; all failures
// come back joined.
func (d *syncDispatcher) Publish(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = d.now().UTC()
	}

	d.mu.RLock()
	subscribers := d.handlers[event.Type]
	d.mu.RUnlock()

	var errs []error
	for i, handle := range subscribers {
		if err := invoke(ctx, handle, event); err != nil {
			errs = append(errs, fmt.Errorf("%s handler %d: %w", event.Type, i, err))
		}
	}
	return errors.Join(errs...)
}

func invoke(ctx context.Context, handle EventHandler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return handle(ctx, event)
}

// Subscribe registers a handler for the given event type.
func (d *syncDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// copy on write so Publish can iterate a snapshot without holding the lock
	next := make([]EventHandler, 0, len(d.handlers[eventType])+1)
	next = append(next, d.handlers[eventType]...)
	d.handlers[eventType] = append(next, handler)
}
