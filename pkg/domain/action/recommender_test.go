package action_test

import (
	"reflect"
	"testing"

	"github.com/felixgeelhaar/slate/pkg/domain/action"
	"github.com/felixgeelhaar/slate/pkg/domain/approval"
	"github.com/felixgeelhaar/slate/pkg/domain/lifecycle"
	"github.com/felixgeelhaar/slate/pkg/domain/modules"
)

const owner = "owner@studio.test"

func assigned() approval.Record {
	return approval.Record{
		approval.RoleProducer:  {Contact: owner},
		approval.RoleLegal:     {Contact: "lee@studio.test"},
		approval.RoleFinance:   {Contact: "fin@studio.test"},
		approval.RoleExecutive: {Contact: "exec@studio.test"},
		approval.RoleClient:    {Contact: "client@brand.test"},
	}
}

func kinds(actions []action.Action) []action.Kind {
	out := make([]action.Kind, len(actions))
	for i, a := range actions {
		out[i] = a.Kind
	}
	return out
}

func TestRecommend_OwnerIsSolePendingApprover(t *testing.T) {
	rec := assigned()
	for _, r := range []approval.Role{approval.RoleLegal, approval.RoleFinance, approval.RoleExecutive, approval.RoleClient} {
		rec.SetApproved(r, true)
	}

	actions := action.Recommend(action.Input{
		State:        lifecycle.StateBudgetApproval,
		Approvals:    rec,
		BriefPresent: true,
		Actor:        action.Actor{Email: "OWNER@studio.test", IsOwner: true},
	})

	if len(actions) == 0 {
		t.Fatal("expected actions")
	}
	if actions[0].Kind != action.KindApprovalRequired {
		t.Fatalf("first action = %s, want approval-required; got %v", actions[0].Kind, kinds(actions))
	}
	for _, a := range actions {
		if a.Kind == action.KindAwaitingApprovals {
			t.Error("owner who is the pending approver should not be told to wait")
		}
	}
}

func TestRecommend_OwnerWaitingOnOthers(t *testing.T) {
	rec := assigned()
	rec.SetApproved(approval.RoleProducer, true)
	rec.SetApproved(approval.RoleLegal, true)
	rec.SetApproved(approval.RoleFinance, true)

	actions := action.Recommend(action.Input{
		State:        lifecycle.StateBudgetApproval,
		Approvals:    rec,
		BriefPresent: true,
		Actor:        action.Actor{Email: owner, IsOwner: true},
	})

	want := []action.Kind{action.KindGreenlightBlocked, action.KindAwaitingApprovals}
	if !reflect.DeepEqual(kinds(actions), want) {
		t.Fatalf("kinds = %v, want %v", kinds(actions), want)
	}
	if actions[1].Title != "Waiting on 2 approvals" {
		t.Errorf("title = %q", actions[1].Title)
	}
	if actions[0].Description != "2 approvals outstanding." {
		t.Errorf("description = %q", actions[0].Description)
	}
}

func TestRecommend_ReadyToAdvance(t *testing.T) {
	rec := assigned()
	for _, r := range approval.ValidRoles() {
		rec.SetApproved(r, true)
	}

	actions := action.Recommend(action.Input{
		State:        lifecycle.StateBudgetApproval,
		Approvals:    rec,
		BriefPresent: true,
		Actor:        action.Actor{Email: owner, IsOwner: true},
	})

	want := []action.Kind{action.KindReadyToAdvance}
	if !reflect.DeepEqual(kinds(actions), want) {
		t.Fatalf("kinds = %v, want %v", kinds(actions), want)
	}
	if actions[0].Module != modules.Greenlight {
		t.Errorf("module = %s", actions[0].Module)
	}
}

// Approvals can be complete while the brief is still missing; both the
// advance prompt and the blocked warning fire.
func TestRecommend_RulesAreNotExclusive(t *testing.T) {
	rec := assigned()
	for _, r := range approval.ValidRoles() {
		rec.SetApproved(r, true)
	}

	actions := action.Recommend(action.Input{
		State:     lifecycle.StateIntake,
		Approvals: rec,
		Actor:     action.Actor{Email: owner, IsOwner: true},
	})

	want := []action.Kind{action.KindGreenlightBlocked, action.KindReadyToAdvance}
	if !reflect.DeepEqual(kinds(actions), want) {
		t.Fatalf("kinds = %v, want %v", kinds(actions), want)
	}
	if actions[0].Module != modules.Brief {
		t.Errorf("blocked-by-brief should link to the brief, got %s", actions[0].Module)
	}
}

func TestRecommend_AssignStakeholders(t *testing.T) {
	rec := approval.Record{approval.RoleProducer: {Contact: owner}}

	actions := action.Recommend(action.Input{
		State:        lifecycle.StateIntake,
		Approvals:    rec,
		BriefPresent: true,
		Actor:        action.Actor{Email: "someone@studio.test", IsOwner: true},
	})

	want := []action.Kind{action.KindGreenlightBlocked, action.KindAwaitingApprovals, action.KindAssignStakeholders}
	if !reflect.DeepEqual(kinds(actions), want) {
		t.Fatalf("kinds = %v, want %v", kinds(actions), want)
	}
	if got := actions[2].Description; got != "No contact for Legal, Finance, Executive, Client." {
		t.Errorf("description = %q", got)
	}
}

func TestRecommend_AssignStakeholdersIncludesApprovedRoles(t *testing.T) {
	rec := assigned()
	for _, r := range approval.ValidRoles() {
		rec.SetApproved(r, true)
	}
	rec.Assign(approval.RoleClient, "")

	actions := action.Recommend(action.Input{
		State:        lifecycle.StateBudgetApproval,
		Approvals:    rec,
		BriefPresent: true,
		Actor:        action.Actor{Email: owner, IsOwner: true},
	})

	want := []action.Kind{action.KindReadyToAdvance, action.KindAssignStakeholders}
	if !reflect.DeepEqual(kinds(actions), want) {
		t.Fatalf("kinds = %v, want %v", kinds(actions), want)
	}
	if got := actions[1].Description; got != "No contact for Client." {
		t.Errorf("description = %q", got)
	}
}

func TestRecommend_AssignStakeholdersOnlyTrackedRoles(t *testing.T) {
	rec := approval.Record{approval.RoleProducer: {Contact: owner, Approved: true}}

	actions := action.Recommend(action.Input{
		State:        lifecycle.StateBudgetApproval,
		Approvals:    rec,
		Roles:        []approval.Role{approval.RoleProducer},
		BriefPresent: true,
		Actor:        action.Actor{Email: owner, IsOwner: true},
	})

	want := []action.Kind{action.KindReadyToAdvance}
	if !reflect.DeepEqual(kinds(actions), want) {
		t.Errorf("kinds = %v, want %v", kinds(actions), want)
	}
}

func TestRecommend_CallSheets(t *testing.T) {
	rec := assigned()
	for _, r := range approval.ValidRoles() {
		rec.SetApproved(r, true)
	}

	for _, s := range []lifecycle.State{lifecycle.StatePreProduction, lifecycle.StateProduction} {
		actions := action.Recommend(action.Input{
			State:        s,
			Approvals:    rec,
			BriefPresent: true,
			Actor:        action.Actor{Email: "crew@studio.test"},
		})
		want := []action.Kind{action.KindManageCallSheets}
		if !reflect.DeepEqual(kinds(actions), want) {
			t.Errorf("%s: kinds = %v, want %v", s, kinds(actions), want)
		}
	}
}

func TestRecommend_AllCaughtUp(t *testing.T) {
	rec := assigned()
	for _, r := range approval.ValidRoles() {
		rec.SetApproved(r, true)
	}

	actions := action.Recommend(action.Input{
		State:        lifecycle.StatePostProduction,
		Approvals:    rec,
		BriefPresent: true,
		Actor:        action.Actor{Email: "editor@studio.test"},
	})
	if actions == nil || len(actions) != 0 {
		t.Errorf("actions = %v, want empty non-nil list", actions)
	}
}

func TestRecommend_GreenlightBlockedOnlyInDevelopment(t *testing.T) {
	for _, s := range lifecycle.AllStates() {
		actions := action.Recommend(action.Input{
			State: s,
			Actor: action.Actor{Email: "viewer@studio.test"},
		})
		blocked := false
		for _, a := range actions {
			if a.Kind == action.KindGreenlightBlocked {
				blocked = true
			}
		}
		want := lifecycle.PhaseOf(s) == lifecycle.PhaseDevelopment
		if blocked != want {
			t.Errorf("%s: greenlight-blocked = %v, want %v", s, blocked, want)
		}
	}
}

func TestRecommend_SortedByPriority(t *testing.T) {
	rec := approval.Record{
		approval.RoleProducer: {Contact: owner},
		approval.RoleLegal:    {Contact: "lee@studio.test"},
	}

	actions := action.Recommend(action.Input{
		State:     lifecycle.StateIntake,
		Approvals: rec,
		Actor:     action.Actor{Email: owner, IsOwner: true},
	})

	for i := 1; i < len(actions); i++ {
		if actions[i-1].Priority.Rank() > actions[i].Priority.Rank() {
			t.Fatalf("actions not sorted: %v", kinds(actions))
		}
	}
	want := []action.Kind{action.KindApprovalRequired, action.KindGreenlightBlocked, action.KindAssignStakeholders}
	if !reflect.DeepEqual(kinds(actions), want) {
		t.Errorf("kinds = %v, want %v", kinds(actions), want)
	}
}

func TestRecommend_Idempotent(t *testing.T) {
	in := action.Input{
		State:     lifecycle.StateLegalReview,
		Approvals: assigned(),
		Actor:     action.Actor{Email: owner, IsOwner: true},
	}
	first := action.Recommend(in)
	for i := 0; i < 3; i++ {
		if again := action.Recommend(in); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %v vs %v", i, kinds(first), kinds(again))
		}
	}
}

type staticRule struct{ a action.Action }

func (r staticRule) ID() action.Kind { return "static" }

func (r staticRule) Evaluate(*action.Context) *action.Action {
	a := r.a
	return &a
}

func TestRecommender_CustomRules(t *testing.T) {
	rec := &action.Recommender{Rules: []action.Rule{
		staticRule{action.Action{Title: "b", Priority: action.PriorityMedium}},
		staticRule{action.Action{Title: "a", Priority: action.PriorityCritical}},
		staticRule{action.Action{Title: "c", Priority: action.PriorityMedium}},
	}}

	got := rec.Recommend(action.Input{})
	titles := []string{got[0].Title, got[1].Title, got[2].Title}
	if !reflect.DeepEqual(titles, []string{"a", "b", "c"}) {
		t.Errorf("titles = %v", titles)
	}
	if got[0].Kind != "static" {
		t.Errorf("kind should default to rule id, got %q", got[0].Kind)
	}
}
