// Package events defines the domain events emitted as projects move through
// the lifecycle.
package events

import (
	"time"

	"github.com/felixgeelhaar/slate/pkg/domain/approval"
	"github.com/felixgeelhaar/slate/pkg/domain/lifecycle"
)

// Event types.
const (
	EventTypeProjectCreated      = "project.created"
	EventTypeProjectTransitioned = "project.transitioned"
	EventTypeApprovalRecorded    = "approval.recorded"
	EventTypeContactAssigned     = "contact.assigned"
	EventTypeGreenlightReady     = "greenlight.ready"
)

// AllEventTypes returns every event type.
func AllEventTypes() []string {
	return []string{
		EventTypeProjectCreated,
		EventTypeProjectTransitioned,
		EventTypeApprovalRecorded,
		EventTypeContactAssigned,
		EventTypeGreenlightReady,
	}
}

// DomainEvent is the base interface for all domain events.
type DomainEvent interface {
	EventType() string
	AggregateID() string
	OccurredAt() time.Time
	ActorID() string

	// Metadata returns the event payload as audit metadata.
	Metadata() map[string]any
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	ProjectID string    `json:"project_id"`
	Actor     string    `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBase returns a BaseEvent for the given type.
func NewBase(id, eventType, projectID, actor string, at time.Time) BaseEvent {
	return BaseEvent{ID: id, Type: eventType, ProjectID: projectID, Actor: actor, Timestamp: at}
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) AggregateID() string   { return e.ProjectID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) ActorID() string       { return e.Actor }

// ProjectCreated is emitted when a project is stored for the first time.
type ProjectCreated struct {
	BaseEvent
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

func (e *ProjectCreated) Metadata() map[string]any {
	return map[string]any{"name": e.Name, "owner": e.Owner}
}

// ProjectTransitioned is emitted after a state change is committed.
type ProjectTransitioned struct {
	BaseEvent
	From   lifecycle.State `json:"from"`
	To     lifecycle.State `json:"to"`
	Reason string          `json:"reason,omitempty"`
}

func (e *ProjectTransitioned) Metadata() map[string]any {
	m := map[string]any{"from": string(e.From), "to": string(e.To)}
	if e.Reason != "" {
		m["reason"] = e.Reason
	}
	return m
}

// ApprovalRecorded is emitted when a role signs off or withdraws.
type ApprovalRecorded struct {
	BaseEvent
	Role     approval.Role `json:"role"`
	Approved bool          `json:"approved"`
}

func (e *ApprovalRecorded) Metadata() map[string]any {
	return map[string]any{"role": string(e.Role), "approved": e.Approved}
}

// ContactAssigned is emitted when a role gets a contact.
type ContactAssigned struct {
	BaseEvent
	Role    approval.Role `json:"role"`
	Contact string        `json:"contact"`
}

func (e *ContactAssigned) Metadata() map[string]any {
	return map[string]any{"role": string(e.Role), "contact": e.Contact}
}

// GreenlightReady is emitted when the greenlight gate opens.
type GreenlightReady struct {
	BaseEvent
	CompletedCount int `json:"completed_count"`
	TotalCount     int `json:"total_count"`
}

func (e *GreenlightReady) Metadata() map[string]any {
	return map[string]any{"completed": e.CompletedCount, "total": e.TotalCount}
}
