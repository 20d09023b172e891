package lifecycle

// transitions is the static edge table: from-state -> allowed to-states, in
// the order they are offered to the user.
var transitions = map[State][]State{
	StateIntake:         {StateLegalReview, StateBudgetApproval, StateOnHold, StateCancelled},
	StateLegalReview:    {StateBudgetApproval, StateIntake, StateOnHold, StateCancelled},
	StateBudgetApproval: {StateGreenlit, StateLegalReview, StateOnHold, StateCancelled},
	StateGreenlit:       {StatePreProduction, StateOnHold, StateCancelled},
	StatePreProduction:  {StateProduction, StateOnHold, StateCancelled},
	StateProduction:     {StatePostProduction, StateOnHold, StateCancelled},
	StatePostProduction: {StateReview, StateProduction, StateOnHold, StateCancelled},
	StateReview:         {StateDistribution, StatePostProduction, StateOnHold, StateCancelled},
	StateDistribution:   {StateCompleted, StateOnHold},
	StateCompleted:      {StateArchived},
	StateArchived:       {StateCompleted},
	StateOnHold:         append(MainStates(), StateCancelled),
	StateCancelled:      {},
}

// edgeSet mirrors transitions for constant-time membership tests.
var edgeSet = func() map[State]map[State]struct{} {
	set := make(map[State]map[State]struct{}, len(transitions))
	for from, targets := range transitions {
		set[from] = make(map[State]struct{}, len(targets))
		for _, to := range targets {
			set[from][to] = struct{}{}
		}
	}
	return set
}()

// IsValidTransition reports whether the edge table declares from -> to.
// Undeclared pairs, including unknown states, return false.
func IsValidTransition(from, to State) bool {
	_, ok := edgeSet[from][to]
	return ok
}

// ValidNextStates returns the declared out-edges of s. The slice is a copy and
// is empty for CANCELLED and for unknown states.
func ValidNextStates(s State) []State {
	targets := transitions[s]
	out := make([]State, len(targets))
	copy(out, targets)
	return out
}

// CanTransitionTo returns true if the edge table allows s -> target.
func (s State) CanTransitionTo(target State) bool {
	return IsValidTransition(s, target)
}

// ValidTransitions returns all states reachable from s in one step.
func (s State) ValidTransitions() []State {
	return ValidNextStates(s)
}
