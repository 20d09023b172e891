package project

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/slate/pkg/domain/approval"
	"github.com/felixgeelhaar/slate/pkg/domain/lifecycle"
)

// Domain errors for project coordination.
var (
	// ErrProjectNotFound indicates no project is stored under the ID.
	ErrProjectNotFound = errors.New("project not found")

	// ErrProjectExists indicates a project with the ID already exists.
	ErrProjectExists = errors.New("project already exists")

	// ErrProjectCancelled indicates the project is cancelled and cannot change.
	ErrProjectCancelled = errors.New("project is cancelled")

	// ErrInvalidTransition indicates the requested state change is not a declared edge.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	// ErrRequirementsNotMet indicates the target state's requirements are unmet.
	ErrRequirementsNotMet = errors.New("transition requirements not met")

	// ErrUnknownRole indicates the approval role is not recognised.
	ErrUnknownRole = errors.New("unknown approval role")

	// ErrOwnerRequired indicates an owner is required for this operation.
	ErrOwnerRequired = errors.New("owner required")

	// ErrNotApprover indicates the actor is not the contact assigned to the role.
	ErrNotApprover = errors.New("not the assigned approver")

	// ErrNameRequired indicates a project must have a name.
	ErrNameRequired = errors.New("project name required")

	// ErrReservedField indicates the field is derived and cannot be set directly.
	ErrReservedField = errors.New("field is managed by approvals")
)

// TransitionError provides details about a rejected state change.
type TransitionError struct {
	ProjectID string
	From      lifecycle.State
	To        lifecycle.State
}

func (e *TransitionError) Error() string {
	if e.From.IsTerminal() {
		return "cannot transition project " + e.ProjectID + ": " + string(e.From) + " is final"
	}
	return "cannot transition project " + e.ProjectID + " from " + string(e.From) + " to " + string(e.To)
}

// Is allows errors.Is to work with TransitionError.
func (e *TransitionError) Is(target error) bool {
	if target == ErrInvalidTransition {
		return true
	}
	return target == ErrProjectCancelled && e.From == lifecycle.StateCancelled
}

// RequirementError lists the requirements blocking a declared transition.
type RequirementError struct {
	ProjectID string
	From      lifecycle.State
	To        lifecycle.State
	Missing   []lifecycle.TransitionRequirement
}

func (e *RequirementError) Error() string {
	names := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		names[i] = m.Label
	}
	return fmt.Sprintf("cannot move project %s to %s: missing %s", e.ProjectID, e.To, strings.Join(names, ", "))
}

// Is allows errors.Is to work with RequirementError.
func (e *RequirementError) Is(target error) bool {
	return target == ErrRequirementsNotMet
}

// ApproverError is returned when someone other than a role's contact tries
// to record its sign-off.
type ApproverError struct {
	ProjectID string
	Role      approval.Role
	Contact   string
	Actor     string
}

func (e *ApproverError) Error() string {
	if e.Contact == "" {
		return fmt.Sprintf("no %s approver is assigned on project %s", e.Role, e.ProjectID)
	}
	return fmt.Sprintf("%s cannot sign off %s on project %s: assigned to %s", e.Actor, e.Role, e.ProjectID, e.Contact)
}

// Is allows errors.Is to work with ApproverError.
func (e *ApproverError) Is(target error) bool {
	return target == ErrNotApprover
}

// ConflictError is returned when a save fails due to a version mismatch.
type ConflictError struct {
	ProjectID string
	Expected  int
	Actual    int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("project %s was modified concurrently (expected version %d, found %d)", e.ProjectID, e.Expected, e.Actual)
}
