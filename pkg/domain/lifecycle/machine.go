package lifecycle

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

const (
	requirementsGuard = "requirementsMet"
	sealedGuard       = "sealed"
)

// MachineContext carries the snapshot the requirement guard evaluates.
type MachineContext struct {
	ProjectID string
	Snapshot  Snapshot
	Filter    RequirementFilter
}

// MachineOption configures a Machine.
type MachineOption func(*MachineContext)

// WithRequirementFilter limits the guard to the requirements keep enforces.
func WithRequirementFilter(keep RequirementFilter) MachineOption {
	return func(c *MachineContext) {
		c.Filter = keep
	}
}

// Machine is a statekit interpreter over the lifecycle edge table. Every edge
// is guarded by the target state's requirements, so a Fire succeeds only when
// CheckTransition would allow it.
//
// Events are named after their target state: firing "GREENLIT" from
// BUDGET_APPROVAL moves the project to GREENLIT.
type Machine struct {
	interpreter *statekit.Interpreter[MachineContext]
	snapshot    Snapshot
	filter      RequirementFilter
}

// NewMachine builds a machine positioned at initial for the given snapshot.
func NewMachine(initial State, projectID string, snap Snapshot, opts ...MachineOption) (*Machine, error) {
	if !initial.IsValid() {
		return nil, fmt.Errorf("invalid initial state: %s", initial)
	}
	if snap == nil {
		snap = Snapshot{}
	}
	mctx := MachineContext{ProjectID: projectID, Snapshot: snap}
	for _, opt := range opts {
		opt(&mctx)
	}

	builder := statekit.NewMachine[MachineContext]("production-lifecycle").
		WithInitial(statekit.StateID(initial)).
		WithContext(mctx).
		WithGuard(requirementsGuard, func(ctx MachineContext, e statekit.Event) bool {
			return CanTransitionToWith(State(e.Type), ctx.Snapshot, ctx.Filter).CanTransition
		}).
		WithGuard(sealedGuard, func(MachineContext, statekit.Event) bool {
			return false
		})

	for _, from := range allStates {
		targets := transitions[from]
		sb := builder.State(statekit.StateID(from))
		if len(targets) == 0 {
			// Sink states get a self-edge that can never fire.
			sb.On(statekit.EventType(from)).Target(statekit.StateID(from)).Guard(sealedGuard).Done()
			continue
		}
		tb := sb.On(statekit.EventType(targets[0])).Target(statekit.StateID(targets[0])).Guard(requirementsGuard)
		for _, to := range targets[1:] {
			tb = tb.On(statekit.EventType(to)).Target(statekit.StateID(to)).Guard(requirementsGuard)
		}
		tb.Done()
	}

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build lifecycle machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &Machine{interpreter: interpreter, snapshot: snap, filter: mctx.Filter}, nil
}

// Current returns the machine's current state.
func (m *Machine) Current() State {
	return State(m.interpreter.State().Value)
}

// Can reports whether Fire(target) would succeed from the current state.
func (m *Machine) Can(target State) bool {
	return CheckTransitionWith(m.Current(), target, m.snapshot, m.filter).CanTransition
}

// Fire attempts to move the machine to target.
func (m *Machine) Fire(target State) error {
	before := m.Current()
	if !IsValidTransition(before, target) {
		return fmt.Errorf("transition from %s to %s is not declared", before, target)
	}

	m.interpreter.Send(statekit.Event{Type: statekit.EventType(target)})
	if m.Current() == target {
		return nil
	}
	return fmt.Errorf("transition from %s to %s is blocked by unmet requirements", before, target)
}
