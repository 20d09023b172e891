package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/slate/pkg/domain"
	"github.com/felixgeelhaar/slate/pkg/domain/approval"
	"github.com/felixgeelhaar/slate/pkg/domain/events"
	"github.com/felixgeelhaar/slate/pkg/domain/project"
	"github.com/google/uuid"
)

// EventPublisher turns coordinator callbacks into domain events. Each event
// is written to the audit trail and then dispatched to handlers.
type EventPublisher struct {
	audit      domain.AuditLogger
	dispatcher *events.EventDispatcher
	logger     *slog.Logger
	now        func() time.Time
}

var _ project.EventPublisher = (*EventPublisher)(nil)

// NewEventPublisher creates a new EventPublisher. Either collaborator may be
// nil.
func NewEventPublisher(audit domain.AuditLogger, dispatcher *events.EventDispatcher, logger *slog.Logger) *EventPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventPublisher{audit: audit, dispatcher: dispatcher, logger: logger, now: time.Now}
}

func (p *EventPublisher) base(eventType, projectID, actor string) events.BaseEvent {
	return events.NewBase(uuid.New().String(), eventType, projectID, actor, p.now().UTC())
}

func (p *EventPublisher) publish(ctx context.Context, e events.DomainEvent) error {
	if p.audit != nil {
		if err := p.audit.Log(e.EventType(), e.ActorID(), e.AggregateID(), e.Metadata()); err != nil {
			p.logger.Error("failed to record audit event", "event_type", e.EventType(), "error", err)
			return err
		}
	}
	if p.dispatcher != nil {
		if err := p.dispatcher.Dispatch(ctx, e); err != nil {
			p.logger.Warn("event handler failed", "event_type", e.EventType(), "error", err)
			return err
		}
	}
	return nil
}

// PublishProjectCreated implements project.EventPublisher.
func (p *EventPublisher) PublishProjectCreated(ctx context.Context, pr *project.Project, actor string) error {
	return p.publish(ctx, &events.ProjectCreated{
		BaseEvent: p.base(events.EventTypeProjectCreated, pr.ID, actor),
		Name:      pr.Name,
		Owner:     pr.Owner,
	})
}

// PublishProjectTransitioned implements project.EventPublisher.
func (p *EventPublisher) PublishProjectTransitioned(ctx context.Context, projectID string, t project.Transition) error {
	return p.publish(ctx, &events.ProjectTransitioned{
		BaseEvent: p.base(events.EventTypeProjectTransitioned, projectID, t.Actor),
		From:      t.From,
		To:        t.To,
		Reason:    t.Reason,
	})
}

// PublishApprovalRecorded implements project.EventPublisher.
func (p *EventPublisher) PublishApprovalRecorded(ctx context.Context, projectID string, role approval.Role, approved bool, actor string) error {
	return p.publish(ctx, &events.ApprovalRecorded{
		BaseEvent: p.base(events.EventTypeApprovalRecorded, projectID, actor),
		Role:      role,
		Approved:  approved,
	})
}

// PublishContactAssigned implements project.EventPublisher.
func (p *EventPublisher) PublishContactAssigned(ctx context.Context, projectID string, role approval.Role, contact, actor string) error {
	return p.publish(ctx, &events.ContactAssigned{
		BaseEvent: p.base(events.EventTypeContactAssigned, projectID, actor),
		Role:      role,
		Contact:   contact,
	})
}

// PublishGreenlightReady implements project.EventPublisher.
func (p *EventPublisher) PublishGreenlightReady(ctx context.Context, projectID string, status approval.GreenlightStatus, actor string) error {
	return p.publish(ctx, &events.GreenlightReady{
		BaseEvent:      p.base(events.EventTypeGreenlightReady, projectID, actor),
		CompletedCount: status.CompletedCount,
		TotalCount:     status.TotalCount,
	})
}
