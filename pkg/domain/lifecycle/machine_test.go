package lifecycle_test

import (
	"testing"

	"github.com/felixgeelhaar/slate/pkg/domain/lifecycle"
)

func TestMachine(t *testing.T) {
	// 1. Init
	m, err := lifecycle.NewMachine(lifecycle.StatePreProduction, "p1", lifecycle.Snapshot{
		"teamAssigned":       8,
		"locationsConfirmed": true,
	})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if m.Current() != lifecycle.StatePreProduction {
		t.Errorf("Expected PRE_PRODUCTION, got %s", m.Current())
	}

	// 2. Guarded transition that passes
	if !m.Can(lifecycle.StateProduction) {
		t.Fatal("Can(PRODUCTION) = false")
	}
	if err := m.Fire(lifecycle.StateProduction); err != nil {
		t.Fatalf("Fire(PRODUCTION) failed: %v", err)
	}
	if m.Current() != lifecycle.StateProduction {
		t.Errorf("Expected PRODUCTION, got %s", m.Current())
	}

	// 3. Undeclared edge
	if err := m.Fire(lifecycle.StateIntake); err == nil {
		t.Error("Expected error for undeclared edge")
	}
	if m.Current() != lifecycle.StateProduction {
		t.Errorf("State changed despite undeclared edge: %s", m.Current())
	}
}

func TestMachine_GuardBlocksUnmetRequirements(t *testing.T) {
	m, err := lifecycle.NewMachine(lifecycle.StatePreProduction, "p2", lifecycle.Snapshot{
		"teamAssigned":       0,
		"locationsConfirmed": true,
	})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if m.Can(lifecycle.StateProduction) {
		t.Error("Can(PRODUCTION) should be false with no crew")
	}
	if err := m.Fire(lifecycle.StateProduction); err == nil {
		t.Error("Expected guard to block PRODUCTION")
	}
	if m.Current() != lifecycle.StatePreProduction {
		t.Errorf("State changed despite failing guard: %s", m.Current())
	}
}

func TestMachine_CancelledIsSink(t *testing.T) {
	m, err := lifecycle.NewMachine(lifecycle.StateCancelled, "p3", nil)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	for _, s := range lifecycle.AllStates() {
		if err := m.Fire(s); err == nil {
			t.Errorf("CANCELLED -> %s should fail", s)
		}
	}
	if m.Current() != lifecycle.StateCancelled {
		t.Errorf("Expected CANCELLED, got %s", m.Current())
	}
}

func TestMachine_SuspendAndResume(t *testing.T) {
	m, err := lifecycle.NewMachine(lifecycle.StateReview, "p4", lifecycle.Snapshot{"roughCutDelivered": true})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := m.Fire(lifecycle.StateOnHold); err != nil {
		t.Fatalf("Fire(ON_HOLD): %v", err)
	}
	if err := m.Fire(lifecycle.StateReview); err != nil {
		t.Fatalf("resume to REVIEW: %v", err)
	}
	if m.Current() != lifecycle.StateReview {
		t.Errorf("Expected REVIEW, got %s", m.Current())
	}
}

func TestNewMachine_InvalidInitial(t *testing.T) {
	if _, err := lifecycle.NewMachine("WRAP", "p5", nil); err == nil {
		t.Error("expected error for unknown initial state")
	}
}

func TestMachine_RequirementFilter(t *testing.T) {
	snap := lifecycle.Snapshot{"briefCompleted": true}
	noApprovals := func(req lifecycle.TransitionRequirement) bool {
		return req.Type != lifecycle.RequirementApproval
	}

	strict, err := lifecycle.NewMachine(lifecycle.StateBudgetApproval, "p6", snap)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := strict.Fire(lifecycle.StateGreenlit); err == nil {
		t.Error("Expected approvals to block GREENLIT")
	}

	m, err := lifecycle.NewMachine(lifecycle.StateBudgetApproval, "p6", snap, lifecycle.WithRequirementFilter(noApprovals))
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if !m.Can(lifecycle.StateGreenlit) {
		t.Fatal("Can(GREENLIT) = false with approvals filtered out")
	}
	if err := m.Fire(lifecycle.StateGreenlit); err != nil {
		t.Fatalf("Fire(GREENLIT) failed: %v", err)
	}
}
