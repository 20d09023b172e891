package lifecycle_test

import (
	"testing"

	"github.com/felixgeelhaar/slate/pkg/domain/lifecycle"
)

// expectedEdges is written out independently of the package table so a typo
// in either shows up as a mismatch.
var expectedEdges = map[lifecycle.State][]lifecycle.State{
	lifecycle.StateIntake: {
		lifecycle.StateLegalReview, lifecycle.StateBudgetApproval,
		lifecycle.StateOnHold, lifecycle.StateCancelled,
	},
	lifecycle.StateLegalReview: {
		lifecycle.StateBudgetApproval, lifecycle.StateIntake,
		lifecycle.StateOnHold, lifecycle.StateCancelled,
	},
	lifecycle.StateBudgetApproval: {
		lifecycle.StateGreenlit, lifecycle.StateLegalReview,
		lifecycle.StateOnHold, lifecycle.StateCancelled,
	},
	lifecycle.StateGreenlit: {
		lifecycle.StatePreProduction, lifecycle.StateOnHold, lifecycle.StateCancelled,
	},
	lifecycle.StatePreProduction: {
		lifecycle.StateProduction, lifecycle.StateOnHold, lifecycle.StateCancelled,
	},
	lifecycle.StateProduction: {
		lifecycle.StatePostProduction, lifecycle.StateOnHold, lifecycle.StateCancelled,
	},
	lifecycle.StatePostProduction: {
		lifecycle.StateReview, lifecycle.StateProduction,
		lifecycle.StateOnHold, lifecycle.StateCancelled,
	},
	lifecycle.StateReview: {
		lifecycle.StateDistribution, lifecycle.StatePostProduction,
		lifecycle.StateOnHold, lifecycle.StateCancelled,
	},
	lifecycle.StateDistribution: {lifecycle.StateCompleted, lifecycle.StateOnHold},
	lifecycle.StateCompleted:    {lifecycle.StateArchived},
	lifecycle.StateArchived:     {lifecycle.StateCompleted},
	lifecycle.StateOnHold: {
		lifecycle.StateIntake, lifecycle.StateLegalReview, lifecycle.StateBudgetApproval,
		lifecycle.StateGreenlit, lifecycle.StatePreProduction, lifecycle.StateProduction,
		lifecycle.StatePostProduction, lifecycle.StateReview, lifecycle.StateDistribution,
		lifecycle.StateCompleted, lifecycle.StateArchived, lifecycle.StateCancelled,
	},
	lifecycle.StateCancelled: {},
}

func TestIsValidTransition_MatchesEdgeTable(t *testing.T) {
	for _, from := range lifecycle.AllStates() {
		allowed := make(map[lifecycle.State]bool)
		for _, to := range expectedEdges[from] {
			allowed[to] = true
		}
		for _, to := range lifecycle.AllStates() {
			got := lifecycle.IsValidTransition(from, to)
			if got != allowed[to] {
				t.Errorf("IsValidTransition(%s, %s) = %v, want %v", from, to, got, allowed[to])
			}
		}
	}
}

func TestValidNextStates(t *testing.T) {
	for _, from := range lifecycle.AllStates() {
		t.Run(string(from), func(t *testing.T) {
			got := lifecycle.ValidNextStates(from)
			want := expectedEdges[from]
			if len(got) != len(want) {
				t.Fatalf("ValidNextStates(%s) = %v, want %v", from, got, want)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("ValidNextStates(%s)[%d] = %s, want %s", from, i, got[i], want[i])
				}
			}
		})
	}
}

func TestCancelledIsSink(t *testing.T) {
	if next := lifecycle.ValidNextStates(lifecycle.StateCancelled); len(next) != 0 {
		t.Fatalf("CANCELLED should have no out-edges, got %v", next)
	}
	if !lifecycle.StateCancelled.IsTerminal() {
		t.Error("CANCELLED should be terminal")
	}
	for _, s := range lifecycle.AllStates() {
		if s != lifecycle.StateCancelled && s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestOnHoldReachesEveryMainState(t *testing.T) {
	for _, s := range lifecycle.MainStates() {
		if !lifecycle.IsValidTransition(lifecycle.StateOnHold, s) {
			t.Errorf("ON_HOLD -> %s should be declared", s)
		}
	}
}

func TestCompletedAndArchivedMutuallyReachable(t *testing.T) {
	if !lifecycle.IsValidTransition(lifecycle.StateCompleted, lifecycle.StateArchived) {
		t.Error("COMPLETED -> ARCHIVED should be declared")
	}
	if !lifecycle.IsValidTransition(lifecycle.StateArchived, lifecycle.StateCompleted) {
		t.Error("ARCHIVED -> COMPLETED should be declared")
	}
}

func TestUnknownStatesHaveNoEdges(t *testing.T) {
	unknown := lifecycle.State("DAILIES")
	if lifecycle.IsValidTransition(unknown, lifecycle.StateIntake) {
		t.Error("unknown source should not transition")
	}
	if lifecycle.IsValidTransition(lifecycle.StateIntake, unknown) {
		t.Error("unknown target should not be reachable")
	}
	if next := lifecycle.ValidNextStates(unknown); len(next) != 0 {
		t.Errorf("unknown state out-edges = %v, want none", next)
	}
}

func TestValidNextStatesReturnsCopy(t *testing.T) {
	next := lifecycle.ValidNextStates(lifecycle.StateIntake)
	next[0] = lifecycle.StateArchived

	again := lifecycle.ValidNextStates(lifecycle.StateIntake)
	if again[0] != lifecycle.StateLegalReview {
		t.Fatalf("edge table was mutated through returned slice: %v", again)
	}
}

func TestStateIndex(t *testing.T) {
	for i, s := range lifecycle.AllStates() {
		if got := lifecycle.StateIndex(s); got != i {
			t.Errorf("StateIndex(%s) = %d, want %d", s, got, i)
		}
	}
	if got := lifecycle.StateIndex("nope"); got != -1 {
		t.Errorf("StateIndex(unknown) = %d, want -1", got)
	}
}
