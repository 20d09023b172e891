package lifecycle

import (
	"encoding/json"
	"fmt"
)

// Phase is one of five ordered, coarse groupings of lifecycle states used for
// coarse-grained access control.
type Phase string

const (
	PhaseDevelopment    Phase = "development"
	PhasePreProduction  Phase = "preproduction"
	PhaseProduction     Phase = "production"
	PhasePostProduction Phase = "postproduction"
	PhaseDelivery       Phase = "delivery"
)

var phaseOrder = []Phase{
	PhaseDevelopment,
	PhasePreProduction,
	PhaseProduction,
	PhasePostProduction,
	PhaseDelivery,
}

// statePhases is total over AllStates. ON_HOLD and CANCELLED map nominally to
// development; IsPhaseAccessible special-cases them.
var statePhases = map[State]Phase{
	StateIntake:         PhaseDevelopment,
	StateLegalReview:    PhaseDevelopment,
	StateBudgetApproval: PhaseDevelopment,
	StateGreenlit:       PhasePreProduction,
	StatePreProduction:  PhasePreProduction,
	StateProduction:     PhaseProduction,
	StatePostProduction: PhasePostProduction,
	StateReview:         PhasePostProduction,
	StateDistribution:   PhaseDelivery,
	StateCompleted:      PhaseDelivery,
	StateArchived:       PhaseDelivery,
	StateOnHold:         PhaseDevelopment,
	StateCancelled:      PhaseDevelopment,
}

// AllPhases returns the phases in pipeline order.
func AllPhases() []Phase {
	out := make([]Phase, len(phaseOrder))
	copy(out, phaseOrder)
	return out
}

// Index returns the order index of the phase, or -1 if unknown.
func (p Phase) Index() int {
	for i, candidate := range phaseOrder {
		if candidate == p {
			return i
		}
	}
	return -1
}

// IsValid returns true if the phase is known.
func (p Phase) IsValid() bool {
	return p.Index() >= 0
}

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// Previous returns the phase immediately before p. The first phase has none.
func (p Phase) Previous() (Phase, bool) {
	i := p.Index()
	if i <= 0 {
		return "", false
	}
	return phaseOrder[i-1], true
}

// DisplayName returns a human-readable display name for the phase.
func (p Phase) DisplayName() string {
	switch p {
	case PhaseDevelopment:
		return "Development"
	case PhasePreProduction:
		return "Pre-Production"
	case PhaseProduction:
		return "Production"
	case PhasePostProduction:
		return "Post-Production"
	case PhaseDelivery:
		return "Delivery"
	default:
		return string(p)
	}
}

// ParsePhase parses a string into a Phase.
func ParsePhase(str string) (Phase, error) {
	p := Phase(str)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid phase: %s", str)
	}
	return p, nil
}

// MarshalJSON implements json.Marshaler interface.
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(p))
}

// PhaseOf returns the phase a state belongs to. Unknown states fall back to
// development.
func PhaseOf(s State) Phase {
	if p, ok := statePhases[s]; ok {
		return p
	}
	return PhaseDevelopment
}

// PhaseIndex returns the order index of the state's phase.
func PhaseIndex(s State) int {
	return PhaseOf(s).Index()
}

// Phase returns the phase the state belongs to.
func (s State) Phase() Phase {
	return PhaseOf(s)
}

// IsPhaseAccessible reports whether screens of the target phase are visible
// while a project is in current.
//
// ON_HOLD and CANCELLED expose every phase (read-only by convention, not
// enforced here). Unknown states and unknown phases are permitted. Otherwise a
// phase is visible iff it is not after the current state's phase.
func IsPhaseAccessible(current State, target Phase) bool {
	if current.IsSuspended() {
		return true
	}
	if _, ok := statePhases[current]; !ok {
		return true
	}
	ti := target.Index()
	if ti < 0 {
		return true
	}
	return ti <= PhaseIndex(current)
}

// AccessiblePhases returns every phase visible from current, in order.
func AccessiblePhases(current State) []Phase {
	var out []Phase
	for _, p := range phaseOrder {
		if IsPhaseAccessible(current, p) {
			out = append(out, p)
		}
	}
	return out
}
