package events

import (
	"context"
	"fmt"
	"sync"
)

const wildcard = "*"

// EventHandlerFunc handles a domain event.
type EventHandlerFunc func(ctx context.Context, event DomainEvent) error

// HandlerRegistration binds a named handler to event types. Use "*" to
// receive every event.
type HandlerRegistration struct {
	EventTypes []string
	Handler    EventHandlerFunc
	Name       string
}

type namedHandler struct {
	name    string
	handler EventHandlerFunc
}

// EventDispatcher fans events out to registered handlers in registration
// order, type-specific handlers before wildcard ones.
type EventDispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]namedHandler

	// ContinueOnError runs the remaining handlers after one fails and
	// reports all failures in a DispatchError.
	ContinueOnError bool
}

// NewEventDispatcher creates a new EventDispatcher.
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{handlers: make(map[string][]namedHandler)}
}

// Register registers a handler for its event types.
func (d *EventDispatcher) Register(reg HandlerRegistration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, eventType := range reg.EventTypes {
		d.handlers[eventType] = append(d.handlers[eventType], namedHandler{name: reg.Name, handler: reg.Handler})
	}
}

// RegisterHandler registers a single handler for event types.
func (d *EventDispatcher) RegisterHandler(name string, handler EventHandlerFunc, eventTypes ...string) {
	d.Register(HandlerRegistration{Name: name, Handler: handler, EventTypes: eventTypes})
}

// RegisterWildcard registers a handler for all events.
func (d *EventDispatcher) RegisterWildcard(name string, handler EventHandlerFunc) {
	d.RegisterHandler(name, handler, wildcard)
}

// Dispatch delivers event to its handlers.
func (d *EventDispatcher) Dispatch(ctx context.Context, event DomainEvent) error {
	d.mu.RLock()
	eventType := event.EventType()
	handlers := make([]namedHandler, 0, len(d.handlers[eventType])+len(d.handlers[wildcard]))
	handlers = append(handlers, d.handlers[eventType]...)
	handlers = append(handlers, d.handlers[wildcard]...)
	d.mu.RUnlock()

	var errs []error
	for _, nh := range handlers {
		if err := nh.handler(ctx, event); err != nil {
			handlerErr := fmt.Errorf("handler %s failed for event %s: %w", nh.name, eventType, err)
			if !d.ContinueOnError {
				return handlerErr
			}
			errs = append(errs, handlerErr)
		}
	}

	if len(errs) > 0 {
		return &DispatchError{Errors: errs}
	}
	return nil
}

// HasHandlers reports whether any handler would receive eventType.
func (d *EventDispatcher) HasHandlers(eventType string) bool {
	return d.HandlerCount(eventType) > 0
}

// HandlerCount returns the number of handlers that receive eventType.
func (d *EventDispatcher) HandlerCount(eventType string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	count := len(d.handlers[eventType])
	if eventType != wildcard {
		count += len(d.handlers[wildcard])
	}
	return count
}

// DispatchError collects handler failures when ContinueOnError is set.
type DispatchError struct {
	Errors []error
}

func (e *DispatchError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("multiple dispatch errors (%d)", len(e.Errors))
}

// Unwrap returns the collected errors for errors.Is/As support.
func (e *DispatchError) Unwrap() []error {
	return e.Errors
}
