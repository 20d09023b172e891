package events

import (
	"context"
	"fmt"
	"log/slog"
)

// Notifier delivers a user-facing message.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// LoggingHandler logs every event at debug level.
type LoggingHandler struct {
	logger *slog.Logger
}

// NewLoggingHandler creates a new LoggingHandler.
func NewLoggingHandler(logger *slog.Logger) *LoggingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingHandler{logger: logger}
}

// Handle logs the event.
func (h *LoggingHandler) Handle(ctx context.Context, event DomainEvent) error {
	h.logger.Debug("domain event",
		"event_type", event.EventType(),
		"project_id", event.AggregateID(),
		"actor", event.ActorID(),
		"occurred_at", event.OccurredAt())
	return nil
}

// Registration returns the HandlerRegistration for this handler.
func (h *LoggingHandler) Registration() HandlerRegistration {
	return HandlerRegistration{
		Name:       "LoggingHandler",
		Handler:    h.Handle,
		EventTypes: []string{wildcard},
	}
}

// TransitionHandler logs committed state changes at info level.
type TransitionHandler struct {
	logger *slog.Logger
}

// NewTransitionHandler creates a new TransitionHandler.
func NewTransitionHandler(logger *slog.Logger) *TransitionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransitionHandler{logger: logger}
}

// Handle processes ProjectTransitioned events.
func (h *TransitionHandler) Handle(ctx context.Context, event DomainEvent) error {
	t, ok := event.(*ProjectTransitioned)
	if !ok {
		return nil
	}
	h.logger.Info("project moved",
		"project_id", t.ProjectID,
		"from", t.From,
		"to", t.To,
		"phase", t.To.Phase(),
		"actor", t.Actor)
	return nil
}

// Registration returns the HandlerRegistration for this handler.
func (h *TransitionHandler) Registration() HandlerRegistration {
	return HandlerRegistration{
		Name:       "TransitionHandler",
		Handler:    h.Handle,
		EventTypes: []string{EventTypeProjectTransitioned},
	}
}

// GreenlightHandler notifies when a project's greenlight gate opens.
type GreenlightHandler struct {
	notifier Notifier
	logger   *slog.Logger
}

// NewGreenlightHandler creates a new GreenlightHandler.
func NewGreenlightHandler(notifier Notifier, logger *slog.Logger) *GreenlightHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GreenlightHandler{notifier: notifier, logger: logger}
}

// Handle processes GreenlightReady events.
func (h *GreenlightHandler) Handle(ctx context.Context, event DomainEvent) error {
	ready, ok := event.(*GreenlightReady)
	if !ok {
		return nil
	}

	h.logger.Info("greenlight gate open",
		"project_id", ready.ProjectID,
		"approvals", ready.CompletedCount)

	if h.notifier == nil {
		return nil
	}
	return h.notifier.Notify(ctx, "Ready to greenlight", formatGreenlightMessage(ready))
}

// Registration returns the HandlerRegistration for this handler.
func (h *GreenlightHandler) Registration() HandlerRegistration {
	return HandlerRegistration{
		Name:       "GreenlightHandler",
		Handler:    h.Handle,
		EventTypes: []string{EventTypeGreenlightReady},
	}
}

func formatGreenlightMessage(e *GreenlightReady) string {
	return fmt.Sprintf("Project %s has the brief and %d/%d approvals. It can move to Greenlit.",
		e.ProjectID, e.CompletedCount, e.TotalCount)
}
