package action

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/slate/pkg/domain/approval"
	"github.com/felixgeelhaar/slate/pkg/domain/lifecycle"
	"github.com/felixgeelhaar/slate/pkg/domain/modules"
)

func labels(roles []approval.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Label()
	}
	return strings.Join(names, ", ")
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// ApprovalRequiredRule asks the actor for the sign-offs they owe.
type ApprovalRequiredRule struct{}

func (ApprovalRequiredRule) ID() Kind { return KindApprovalRequired }

func (r ApprovalRequiredRule) Evaluate(c *Context) *Action {
	if len(c.ActorPending) == 0 {
		return nil
	}
	return &Action{
		Kind:        r.ID(),
		Title:       "Your approval is required",
		Description: fmt.Sprintf("Review the project and sign off as %s.", labels(c.ActorPending)),
		Priority:    PriorityCritical,
		Module:      modules.Approvals,
	}
}

// AwaitingApprovalsRule tells the owner who still has to sign off.
type AwaitingApprovalsRule struct{}

func (AwaitingApprovalsRule) ID() Kind { return KindAwaitingApprovals }

func (r AwaitingApprovalsRule) Evaluate(c *Context) *Action {
	pending := c.Gate.PendingApprovers
	if !c.Actor.IsOwner || len(pending) == 0 || len(c.ActorPending) > 0 {
		return nil
	}
	roles := make([]approval.Role, len(pending))
	for i, p := range pending {
		roles[i] = p.Role
	}
	return &Action{
		Kind:        r.ID(),
		Title:       "Waiting on " + plural(len(pending), "approval"),
		Description: fmt.Sprintf("Pending sign-off from %s.", labels(roles)),
		Priority:    PriorityHigh,
		Module:      modules.Approvals,
	}
}

// ReadyToAdvanceRule tells the owner every tracked approval is in.
type ReadyToAdvanceRule struct{}

func (ReadyToAdvanceRule) ID() Kind { return KindReadyToAdvance }

func (r ReadyToAdvanceRule) Evaluate(c *Context) *Action {
	if !c.Actor.IsOwner || !c.Gate.ApprovalsMet() {
		return nil
	}
	return &Action{
		Kind:        r.ID(),
		Title:       "Ready to greenlight",
		Description: "All approvals are in. Advance the project to Greenlit.",
		Priority:    PriorityHigh,
		Module:      modules.Greenlight,
	}
}

// AssignStakeholdersRule asks the owner to name a contact for every role.
type AssignStakeholdersRule struct{}

func (AssignStakeholdersRule) ID() Kind { return KindAssignStakeholders }

func (r AssignStakeholdersRule) Evaluate(c *Context) *Action {
	if !c.Actor.IsOwner || len(c.Uncontacted) == 0 {
		return nil
	}
	return &Action{
		Kind:        r.ID(),
		Title:       "Assign stakeholders",
		Description: fmt.Sprintf("No contact for %s.", labels(c.Uncontacted)),
		Priority:    PriorityMedium,
		Module:      modules.Team,
	}
}

// GreenlightBlockedRule flags a development-phase project whose gate is
// still closed.
type GreenlightBlockedRule struct{}

func (GreenlightBlockedRule) ID() Kind { return KindGreenlightBlocked }

func (r GreenlightBlockedRule) Evaluate(c *Context) *Action {
	if c.Gate.AllRequirementsMet || lifecycle.PhaseOf(c.State) != lifecycle.PhaseDevelopment {
		return nil
	}

	a := &Action{
		Kind:     r.ID(),
		Title:    "Greenlight blocked",
		Priority: PriorityCritical,
		Module:   modules.Greenlight,
	}
	outstanding := c.Gate.TotalCount - c.Gate.CompletedCount
	switch {
	case !c.Gate.BriefPresent && outstanding > 0:
		a.Description = fmt.Sprintf("Complete the brief and collect %s.", plural(outstanding, "approval"))
		a.Module = modules.Brief
	case !c.Gate.BriefPresent:
		a.Description = "Complete the brief."
		a.Module = modules.Brief
	default:
		a.Description = fmt.Sprintf("%s outstanding.", plural(outstanding, "approval"))
	}
	return a
}

// ManageCallSheetsRule points crews at call sheets while shooting is being
// prepared or under way.
type ManageCallSheetsRule struct{}

func (ManageCallSheetsRule) ID() Kind { return KindManageCallSheets }

func (r ManageCallSheetsRule) Evaluate(c *Context) *Action {
	if c.State != lifecycle.StatePreProduction && c.State != lifecycle.StateProduction {
		return nil
	}
	return &Action{
		Kind:        r.ID(),
		Title:       "Manage call sheets",
		Description: fmt.Sprintf("Keep call sheets current during %s.", c.State.DisplayName()),
		Priority:    PriorityMedium,
		Module:      modules.CallSheets,
	}
}
