package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/felixgeelhaar/slate/pkg/domain/lifecycle"
	"github.com/felixgeelhaar/slate/pkg/domain/project"
)

// RetryPolicy bounds how often a conflicted write is retried.
type RetryPolicy struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	AttemptTimeout time.Duration
}

// DefaultRetryPolicy is used when no policy is configured.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:    3,
	InitialDelay:   20 * time.Millisecond,
	AttemptTimeout: 5 * time.Second,
}

// NextState is a declared out-edge and whether it can be taken now.
type NextState struct {
	State lifecycle.State           `json:"state" yaml:"state"`
	Phase lifecycle.Phase           `json:"phase" yaml:"phase"`
	Check lifecycle.TransitionCheck `json:"check" yaml:"check"`
}

// ProjectStatus is the lifecycle view of a project.
type ProjectStatus struct {
	Project          *project.Project  `json:"project" yaml:"project"`
	Phase            lifecycle.Phase   `json:"phase" yaml:"phase"`
	AccessiblePhases []lifecycle.Phase `json:"accessible_phases" yaml:"accessible_phases"`
	NextStates       []NextState       `json:"next_states" yaml:"next_states"`
}

// LifecycleService executes and explains lifecycle transitions.
type LifecycleService struct {
	coord  *project.Coordinator
	policy RetryPolicy
	logger *slog.Logger
}

// NewLifecycleService creates a new LifecycleService.
func NewLifecycleService(coord *project.Coordinator, policy RetryPolicy, logger *slog.Logger) *LifecycleService {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultRetryPolicy.MaxAttempts
	}
	if policy.InitialDelay <= 0 {
		policy.InitialDelay = DefaultRetryPolicy.InitialDelay
	}
	if policy.AttemptTimeout <= 0 {
		policy.AttemptTimeout = DefaultRetryPolicy.AttemptTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LifecycleService{coord: coord, policy: policy, logger: logger}
}

// Transition moves a project to target. A version conflict means another
// writer got in first, so the attempt is repeated against the fresh record;
// every other failure is returned at once.
func (s *LifecycleService) Transition(ctx context.Context, id string, target lifecycle.State, actor, reason string) (*project.Project, error) {
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: unknown state %q", project.ErrInvalidTransition, target)
	}

	r := retry.New[*project.Project](retry.Config{
		MaxAttempts:   s.policy.MaxAttempts,
		InitialDelay:  s.policy.InitialDelay,
		BackoffPolicy: retry.BackoffExponential,
	})
	t := timeout.New[*project.Project](timeout.Config{
		DefaultTimeout: s.policy.AttemptTimeout,
	})

	var (
		final    error
		conflict *project.ConflictError
		attempts int
	)
	p, err := r.Do(ctx, func(ctx context.Context) (*project.Project, error) {
		attempts++
		p, err := t.Execute(ctx, s.policy.AttemptTimeout, func(ctx context.Context) (*project.Project, error) {
			return s.coord.Transition(ctx, id, target, actor, reason)
		})
		if err == nil {
			return p, nil
		}
		if errors.As(err, &conflict) {
			s.logger.Debug("transition conflicted, retrying", "project_id", id, "attempt", attempts)
			return nil, err
		}
		final = err
		return nil, nil
	})

	switch {
	case final != nil:
		return nil, final
	case err != nil && conflict != nil:
		s.logger.Warn("transition gave up after conflicts", "project_id", id, "attempts", attempts)
		return nil, fmt.Errorf("after %d attempts: %w", attempts, conflict)
	case err != nil:
		return nil, err
	}
	return p, nil
}

// Check evaluates a transition without performing it.
func (s *LifecycleService) Check(ctx context.Context, id string, target lifecycle.State) (lifecycle.TransitionCheck, error) {
	p, err := s.coord.Get(ctx, id)
	if err != nil {
		return lifecycle.TransitionCheck{}, err
	}
	return s.coord.CheckTransition(p, target), nil
}

// Status returns the project's phase and every declared next state.
func (s *LifecycleService) Status(ctx context.Context, id string) (*ProjectStatus, error) {
	p, err := s.coord.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := lifecycle.ValidNextStates(p.State)
	status := &ProjectStatus{
		Project:          p,
		Phase:            p.Phase(),
		AccessiblePhases: lifecycle.AccessiblePhases(p.State),
		NextStates:       make([]NextState, 0, len(next)),
	}
	for _, to := range next {
		status.NextStates = append(status.NextStates, NextState{
			State: to,
			Phase: to.Phase(),
			Check: s.coord.CheckTransition(p, to),
		})
	}
	return status, nil
}

// Requirements returns the requirements of target evaluated against the
// project. Sign-offs of roles the gate does not track are left out.
func (s *LifecycleService) Requirements(ctx context.Context, id string, target lifecycle.State) ([]RequirementStatus, error) {
	p, err := s.coord.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := p.Snapshot()
	gate := s.coord.Gate()
	out := []RequirementStatus{}
	for _, r := range lifecycle.RequirementsFor(target) {
		if !gate.Enforces(r) {
			continue
		}
		out = append(out, RequirementStatus{TransitionRequirement: r, Satisfied: r.IsSatisfiedBy(snap), Value: snap[r.Field]})
	}
	return out, nil
}

// RequirementStatus is one requirement and whether the project meets it.
type RequirementStatus struct {
	lifecycle.TransitionRequirement `yaml:",inline"`
	Satisfied                       bool `json:"satisfied" yaml:"satisfied"`
	Value                           any  `json:"value,omitempty" yaml:"value,omitempty"`
}
