// Package action derives the prioritised next steps shown to a user for a
// project.
package action

import "fmt"

// Priority ranks an action. Lower rank sorts first.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
)

// Rank returns the sort position of the priority. Unknown priorities sort
// last.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

// IsValid checks if the priority is a recognized value.
func (p Priority) IsValid() bool {
	return p.Rank() < 3
}

// String returns the string representation of the priority.
func (p Priority) String() string {
	return string(p)
}

// ParsePriority parses a string into a Priority.
func ParsePriority(str string) (Priority, error) {
	p := Priority(str)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid priority: %s", str)
	}
	return p, nil
}

// Kind identifies the rule that produced an action.
type Kind string

const (
	KindApprovalRequired   Kind = "approval-required"
	KindAwaitingApprovals  Kind = "awaiting-approvals"
	KindReadyToAdvance     Kind = "ready-to-advance"
	KindAssignStakeholders Kind = "assign-stakeholders"
	KindGreenlightBlocked  Kind = "greenlight-blocked"
	KindManageCallSheets   Kind = "manage-call-sheets"
)
