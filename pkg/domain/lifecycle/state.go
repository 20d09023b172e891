// Package lifecycle models the production lifecycle: the states a project moves
// through, the coarse phases those states belong to, the legal transitions
// between them and the conditions that gate each transition.
//
// Everything in this package is pure. The transition, phase and requirement
// tables are built once at package initialisation and never mutated.
package lifecycle

import (
	"encoding/json"
	"fmt"
)

// State is a project's current discrete production stage.
type State string

const (
	StateIntake         State = "INTAKE"
	StateLegalReview    State = "LEGAL_REVIEW"
	StateBudgetApproval State = "BUDGET_APPROVAL"
	StateGreenlit       State = "GREENLIT"
	StatePreProduction  State = "PRE_PRODUCTION"
	StateProduction     State = "PRODUCTION"
	StatePostProduction State = "POST_PRODUCTION"
	StateReview         State = "REVIEW"
	StateDistribution   State = "DISTRIBUTION"
	StateCompleted      State = "COMPLETED"
	StateArchived       State = "ARCHIVED"
	StateOnHold         State = "ON_HOLD"
	StateCancelled      State = "CANCELLED"
)

// InitialState is the state every project is created in.
const InitialState = StateIntake

var allStates = []State{
	StateIntake,
	StateLegalReview,
	StateBudgetApproval,
	StateGreenlit,
	StatePreProduction,
	StateProduction,
	StatePostProduction,
	StateReview,
	StateDistribution,
	StateCompleted,
	StateArchived,
	StateOnHold,
	StateCancelled,
}

// AllStates returns every lifecycle state in display order.
func AllStates() []State {
	out := make([]State, len(allStates))
	copy(out, allStates)
	return out
}

// MainStates returns the pipeline states, excluding ON_HOLD and CANCELLED.
func MainStates() []State {
	out := make([]State, 0, len(allStates)-2)
	for _, s := range allStates {
		if !s.IsSuspended() {
			out = append(out, s)
		}
	}
	return out
}

// StateIndex returns a stable display position for the state, or -1 if the
// state is unknown. It does not encode legality.
func StateIndex(s State) int {
	for i, candidate := range allStates {
		if candidate == s {
			return i
		}
	}
	return -1
}

// IsValid returns true if the state is a known lifecycle state.
func (s State) IsValid() bool {
	return StateIndex(s) >= 0
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// IsSuspended returns true for the two off-pipeline states.
func (s State) IsSuspended() bool {
	return s == StateOnHold || s == StateCancelled
}

// IsTerminal returns true if no transition can leave the state.
func (s State) IsTerminal() bool {
	return s == StateCancelled
}

// DisplayName returns a human-readable display name for the state.
func (s State) DisplayName() string {
	switch s {
	case StateIntake:
		return "Intake"
	case StateLegalReview:
		return "Legal Review"
	case StateBudgetApproval:
		return "Budget Approval"
	case StateGreenlit:
		return "Greenlit"
	case StatePreProduction:
		return "Pre-Production"
	case StateProduction:
		return "Production"
	case StatePostProduction:
		return "Post-Production"
	case StateReview:
		return "Review"
	case StateDistribution:
		return "Distribution"
	case StateCompleted:
		return "Completed"
	case StateArchived:
		return "Archived"
	case StateOnHold:
		return "On Hold"
	case StateCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// ParseState parses a string into a State.
func ParseState(str string) (State, error) {
	s := State(str)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid lifecycle state: %s", str)
	}
	return s, nil
}

// MarshalJSON implements json.Marshaler interface.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (s *State) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	// Records written before the state field existed start at intake.
	if str == "" {
		*s = InitialState
		return nil
	}

	parsed, err := ParseState(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
