package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/slate/pkg/application"
	"github.com/felixgeelhaar/slate/pkg/domain/project"
	"github.com/felixgeelhaar/slate/pkg/storage"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	var reqErr *project.RequirementError
	if errors.As(err, &reqErr) {
		labels := make([]string, len(reqErr.Missing))
		for i, r := range reqErr.Missing {
			labels[i] = r.Label
		}
		return NewCLIError(
			reqErr.Error(),
			fmt.Sprintf("Still missing: %s. Check with 'slate requirements %s %s'",
				strings.Join(labels, ", "), reqErr.ProjectID, reqErr.To),
			err,
		)
	}

	var transErr *project.TransitionError
	if errors.As(err, &transErr) {
		if errors.Is(err, project.ErrProjectCancelled) {
			return NewCLIError(transErr.Error(), "Cancelled projects cannot move. Create a new project instead", err)
		}
		return NewCLIError(
			transErr.Error(),
			fmt.Sprintf("Project '%s' is %s. Check valid transitions with 'slate status %s'",
				transErr.ProjectID, transErr.From, transErr.ProjectID),
			err,
		)
	}

	var approverErr *project.ApproverError
	if errors.As(err, &approverErr) {
		if approverErr.Contact == "" {
			return NewCLIError("only the assigned approver can sign off",
				fmt.Sprintf("Assign a contact first: slate assign %s %s <contact>", approverErr.ProjectID, approverErr.Role), err)
		}
		return NewCLIError("only the assigned approver can sign off",
			fmt.Sprintf("%s is assigned to %s. Run as them with --actor", approverErr.Role, approverErr.Contact), err)
	}

	var conflictErr *project.ConflictError
	if errors.As(err, &conflictErr) {
		return NewCLIError(conflictErr.Error(), "Another change landed first. Retry the command", err)
	}

	var schemaErr *storage.SchemaError
	if errors.As(err, &schemaErr) {
		return NewCLIError(schemaErr.Error(), fmt.Sprintf("Fix or restore .slate/%s", schemaErr.File), err)
	}

	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		return NewCLIError("project not found", "Run 'slate project list' to see available projects", err)
	case errors.Is(err, project.ErrProjectExists):
		return NewCLIError("project already exists", "Pick a different --id", err)
	case errors.Is(err, project.ErrProjectCancelled):
		return NewCLIError("project is cancelled", "Cancelled projects are read-only", err)
	case errors.Is(err, project.ErrUnknownRole):
		return NewCLIError("unknown approval role", "Use one of: producer, legal, finance, executive, client", err)
	case errors.Is(err, project.ErrOwnerRequired):
		return NewCLIError("only the project owner can do this", "Run as the owner with --actor", err)
	case errors.Is(err, project.ErrReservedField):
		return NewCLIError("field is managed by approvals", "Use 'slate approve' instead", err)
	case errors.Is(err, application.ErrNullValue):
		return NewCLIError("null is not a field value", "Remove a field with 'slate project unset <id> <field>'", err)
	case errors.Is(err, project.ErrNameRequired):
		return NewCLIError("project name is required", "Pass a name: slate project create <name>", err)
	case errors.Is(err, storage.ErrWorkspaceLocked):
		return NewCLIError("workspace is busy", "Another slate command is writing. Retry shortly", err)
	case errors.Is(err, errNotInitialized):
		return NewCLIError("workspace not initialized", "Run 'slate init' first", err)
	case errors.Is(err, errNoActor):
		return NewCLIError("no actor configured", "Pass --actor or set actor in .slate/config.yaml", err)
	}

	return err
}
