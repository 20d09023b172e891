package approval

import "github.com/felixgeelhaar/slate/pkg/domain/lifecycle"

// PendingApprover is a tracked role that has a contact but has not signed off.
type PendingApprover struct {
	Role    Role   `json:"role" yaml:"role"`
	Label   string `json:"label" yaml:"label"`
	Contact string `json:"contact" yaml:"contact"`
}

// GreenlightStatus summarises how close a project is to greenlight.
type GreenlightStatus struct {
	CompletedCount     int               `json:"completed_count" yaml:"completed_count"`
	TotalCount         int               `json:"total_count" yaml:"total_count"`
	ProgressPercentage float64           `json:"progress_percentage" yaml:"progress_percentage"`
	BriefPresent       bool              `json:"brief_present" yaml:"brief_present"`
	AllRequirementsMet bool              `json:"all_requirements_met" yaml:"all_requirements_met"`
	PendingApprovers   []PendingApprover `json:"pending_approvers" yaml:"pending_approvers"`
	Unassigned         []Role            `json:"unassigned" yaml:"unassigned"`
	CanAdvance         bool              `json:"can_advance" yaml:"can_advance"`
	AdvanceTarget      lifecycle.State   `json:"advance_target,omitempty" yaml:"advance_target,omitempty"`
}

// ApprovalsMet reports whether every tracked role has signed off.
func (s GreenlightStatus) ApprovalsMet() bool {
	return s.CompletedCount == s.TotalCount
}

// GreenlightGate is the barrier that opens once the brief exists and every
// tracked role has signed off.
type GreenlightGate struct {
	Roles []Role
}

// DefaultGreenlightGate tracks every approval role.
var DefaultGreenlightGate = GreenlightGate{Roles: ValidRoles()}

// NewGreenlightGate returns a gate tracking roles. A nil slice tracks every
// role; an empty one tracks none.
func NewGreenlightGate(roles []Role) GreenlightGate {
	if roles == nil {
		return DefaultGreenlightGate
	}
	tracked := make([]Role, len(roles))
	copy(tracked, roles)
	return GreenlightGate{Roles: tracked}
}

// Tracks reports whether role counts toward the gate.
func (g GreenlightGate) Tracks(role Role) bool {
	for _, r := range g.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Enforces reports whether req applies under this gate. Role sign-off
// requirements apply only to tracked roles, so entering GREENLIT asks for
// exactly the approvals the gate counts. Every other requirement applies.
func (g GreenlightGate) Enforces(req lifecycle.TransitionRequirement) bool {
	for _, r := range ValidRoles() {
		if req.Field == r.Flag() {
			return g.Tracks(r)
		}
	}
	return true
}

// Uncontacted returns the tracked roles with no contact, whether or not they
// have signed off.
func (g GreenlightGate) Uncontacted(rec Record) []Role {
	out := []Role{}
	for _, r := range g.Roles {
		if rec.Contact(r) == "" {
			out = append(out, r)
		}
	}
	return out
}

// Evaluate computes the gate's status. Pending approvers are listed in
// tracked order; unapproved roles without a contact are reported as
// unassigned instead but still count toward the total.
func (g GreenlightGate) Evaluate(rec Record, briefPresent bool) GreenlightStatus {
	status := GreenlightStatus{
		TotalCount:       len(g.Roles),
		BriefPresent:     briefPresent,
		PendingApprovers: []PendingApprover{},
		Unassigned:       []Role{},
	}

	for _, role := range g.Roles {
		a := rec[role]
		switch {
		case a.Approved:
			status.CompletedCount++
		case a.Contact == "":
			status.Unassigned = append(status.Unassigned, role)
		default:
			status.PendingApprovers = append(status.PendingApprovers, PendingApprover{
				Role:    role,
				Label:   role.Label(),
				Contact: a.Contact,
			})
		}
	}

	if status.TotalCount == 0 {
		status.ProgressPercentage = 100
	} else {
		status.ProgressPercentage = float64(status.CompletedCount) * 100 / float64(status.TotalCount)
	}

	status.AllRequirementsMet = briefPresent && status.ApprovalsMet()
	status.CanAdvance = status.AllRequirementsMet
	if status.CanAdvance {
		status.AdvanceTarget = lifecycle.StateGreenlit
	}
	return status
}
