// Package project provides the project aggregate and the coordinator that
// applies lifecycle rules to it.
package project

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/slate/pkg/domain/approval"
	"github.com/felixgeelhaar/slate/pkg/domain/lifecycle"
)

// Repository defines the interface for project persistence. Save must reject
// a project whose Version differs from the stored one with a *ConflictError
// and increment Version on success.
type Repository interface {
	Load(ctx context.Context, id string) (*Project, error)
	Save(ctx context.Context, p *Project) error
	List(ctx context.Context) ([]*Project, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// EventPublisher defines the interface for publishing domain events.
type EventPublisher interface {
	PublishProjectCreated(ctx context.Context, p *Project, actor string) error
	PublishProjectTransitioned(ctx context.Context, projectID string, t Transition) error
	PublishApprovalRecorded(ctx context.Context, projectID string, role approval.Role, approved bool, actor string) error
	PublishContactAssigned(ctx context.Context, projectID string, role approval.Role, contact, actor string) error
	PublishGreenlightReady(ctx context.Context, projectID string, status approval.GreenlightStatus, actor string) error
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the coordinator's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithGreenlightGate sets the gate used to detect greenlight readiness.
func WithGreenlightGate(g approval.GreenlightGate) Option {
	return func(c *Coordinator) {
		c.gate = g
	}
}

// Coordinator applies lifecycle operations to stored projects. Every
// operation re-reads the project, validates against that fresh copy and saves
// with a version check.
type Coordinator struct {
	mu        sync.Mutex
	repo      Repository
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
	gate      approval.GreenlightGate
}

// NewCoordinator creates a new Coordinator.
func NewCoordinator(repo Repository, publisher EventPublisher, opts ...Option) *Coordinator {
	c := &Coordinator{
		repo:      repo,
		publisher: publisher,
		logger:    slog.Default(),
		now:       time.Now,
		gate:      approval.DefaultGreenlightGate,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateRequest describes a new project.
type CreateRequest struct {
	ID     string
	Name   string
	Owner  string
	Actor  string
	Fields map[string]any
}

// Create stores a new project at INTAKE.
func (c *Coordinator) Create(ctx context.Context, req CreateRequest) (*Project, error) {
	if strings.TrimSpace(req.Owner) == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}
	if err := ValidateID(req.ID); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	exists, err := c.repo.Exists(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrProjectExists, req.ID)
	}

	p := New(req.ID, strings.TrimSpace(req.Name), strings.TrimSpace(req.Owner), c.now())
	for k, v := range req.Fields {
		if isReservedField(k) {
			return nil, fmt.Errorf("%w: %s", ErrReservedField, k)
		}
		p.Fields[k] = v
	}

	if err := c.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	c.logger.Info("project created", "project_id", p.ID, "owner", p.Owner)

	if c.publisher != nil {
		_ = c.publisher.PublishProjectCreated(ctx, p, actorOr(req.Actor, p.Owner))
	}
	return p, nil
}

// Get loads a project.
func (c *Coordinator) Get(ctx context.Context, id string) (*Project, error) {
	return c.load(ctx, id)
}

// List returns every stored project.
func (c *Coordinator) List(ctx context.Context) ([]*Project, error) {
	return c.repo.List(ctx)
}

// Gate returns the greenlight gate the coordinator enforces.
func (c *Coordinator) Gate() approval.GreenlightGate {
	return c.gate
}

// CheckTransition evaluates moving p to target. Sign-off requirements are
// limited to the roles the gate tracks.
func (c *Coordinator) CheckTransition(p *Project, target lifecycle.State) lifecycle.TransitionCheck {
	return lifecycle.CheckTransitionWith(p.State, target, p.Snapshot(), c.gate.Enforces)
}

// Transition moves a project to target. The edge must be declared and every
// enforced requirement of target must hold against the stored data.
func (c *Coordinator) Transition(ctx context.Context, id string, target lifecycle.State, actor, reason string) (*Project, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}

	from := p.State
	snap := p.Snapshot()
	check := c.CheckTransition(p, target)
	if !check.EdgeDeclared {
		c.logger.Debug("transition rejected", "project_id", id, "from", from, "to", target)
		return nil, &TransitionError{ProjectID: id, From: from, To: target}
	}
	if !check.CanTransition {
		c.logger.Debug("transition blocked", "project_id", id, "to", target, "missing", len(check.MissingRequirements))
		return nil, &RequirementError{ProjectID: id, From: from, To: target, Missing: check.MissingRequirements}
	}

	m, err := lifecycle.NewMachine(from, id, snap, lifecycle.WithRequirementFilter(c.gate.Enforces))
	if err != nil {
		return nil, err
	}
	if err := m.Fire(target); err != nil {
		return nil, fmt.Errorf("lifecycle machine: %w", err)
	}

	now := c.now()
	t := Transition{From: from, To: m.Current(), Actor: actor, Reason: reason, At: now}
	p.State = t.To
	p.History = append(p.History, t)
	p.UpdatedAt = now

	if err := c.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	c.logger.Info("project transitioned", "project_id", id, "from", from, "to", t.To, "actor", actor)

	if c.publisher != nil {
		_ = c.publisher.PublishProjectTransitioned(ctx, id, t)
	}
	return p, nil
}

// SetField stores a snapshot field.
func (c *Coordinator) SetField(ctx context.Context, id, field string, value any, actor string) (*Project, error) {
	if strings.TrimSpace(field) == "" {
		return nil, fmt.Errorf("field name cannot be empty")
	}
	if isReservedField(field) {
		return nil, fmt.Errorf("%w: %s", ErrReservedField, field)
	}
	p, opened, err := c.mutate(ctx, id, func(p *Project) error {
		p.Fields[field] = value
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.announceGreenlight(ctx, p, opened, actor)
	return p, nil
}

// UnsetField removes a snapshot field.
func (c *Coordinator) UnsetField(ctx context.Context, id, field, actor string) (*Project, error) {
	if isReservedField(field) {
		return nil, fmt.Errorf("%w: %s", ErrReservedField, field)
	}
	p, opened, err := c.mutate(ctx, id, func(p *Project) error {
		delete(p.Fields, field)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.announceGreenlight(ctx, p, opened, actor)
	return p, nil
}

// RecordApproval records or revokes a role's sign-off. Only the contact
// assigned to the role may do either; the owner cannot sign on their behalf.
func (c *Coordinator) RecordApproval(ctx context.Context, id string, role approval.Role, approved bool, actor string) (*Project, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
	p, opened, err := c.mutate(ctx, id, func(p *Project) error {
		contact := p.Approvals.Contact(role)
		if contact == "" || !strings.EqualFold(contact, strings.TrimSpace(actor)) {
			return &ApproverError{ProjectID: id, Role: role, Contact: contact, Actor: actor}
		}
		p.Approvals.SetApproved(role, approved)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if c.publisher != nil {
		_ = c.publisher.PublishApprovalRecorded(ctx, id, role, approved, actor)
	}
	c.announceGreenlight(ctx, p, opened, actor)
	return p, nil
}

// AssignContact names the contact responsible for a role. Only the owner may
// assign contacts.
func (c *Coordinator) AssignContact(ctx context.Context, id string, role approval.Role, contact, actor string) (*Project, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
	p, opened, err := c.mutate(ctx, id, func(p *Project) error {
		if !p.IsOwner(actor) {
			return ErrOwnerRequired
		}
		p.Approvals.Assign(role, contact)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if c.publisher != nil {
		_ = c.publisher.PublishContactAssigned(ctx, id, role, strings.TrimSpace(contact), actor)
	}
	c.announceGreenlight(ctx, p, opened, actor)
	return p, nil
}

// mutate applies fn to a fresh copy of the project and saves it. It reports
// whether the change opened the greenlight gate of a development-phase
// project.
func (c *Coordinator) mutate(ctx context.Context, id string, fn func(*Project) error) (*Project, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.load(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if p.State.IsTerminal() {
		return nil, false, fmt.Errorf("%w: %s", ErrProjectCancelled, id)
	}

	before := c.gate.Evaluate(p.Approvals, p.BriefPresent())
	if err := fn(p); err != nil {
		return nil, false, err
	}
	p.UpdatedAt = c.now()

	if err := c.repo.Save(ctx, p); err != nil {
		return nil, false, err
	}

	after := c.gate.Evaluate(p.Approvals, p.BriefPresent())
	opened := !before.AllRequirementsMet && after.AllRequirementsMet &&
		p.Phase() == lifecycle.PhaseDevelopment && !p.State.IsSuspended()
	return p, opened, nil
}

// announceGreenlight publishes GreenlightReady after the event of the change
// that opened the gate.
func (c *Coordinator) announceGreenlight(ctx context.Context, p *Project, opened bool, actor string) {
	if !opened {
		return
	}
	c.logger.Info("greenlight gate open", "project_id", p.ID)
	if c.publisher != nil {
		_ = c.publisher.PublishGreenlightReady(ctx, p.ID, c.gate.Evaluate(p.Approvals, p.BriefPresent()), actor)
	}
}

func (c *Coordinator) load(ctx context.Context, id string) (*Project, error) {
	p, err := c.repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	p.ensure()
	return p, nil
}

func actorOr(actor, fallback string) string {
	if strings.TrimSpace(actor) == "" {
		return fallback
	}
	return actor
}
