package project

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/felixgeelhaar/slate/pkg/domain/approval"
	"github.com/felixgeelhaar/slate/pkg/domain/lifecycle"
)

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// ValidateID checks that id is usable as a project identifier.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("project ID cannot be empty")
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid project ID format: %s", id)
	}
	return nil
}

// Transition is one entry in a project's state history.
type Transition struct {
	From   lifecycle.State `json:"from" yaml:"from"`
	To     lifecycle.State `json:"to" yaml:"to"`
	Actor  string          `json:"actor" yaml:"actor"`
	Reason string          `json:"reason,omitempty" yaml:"reason,omitempty"`
	At     time.Time       `json:"at" yaml:"at"`
}

// Project is a production moving through the lifecycle.
type Project struct {
	ID      string          `json:"id" yaml:"id"`
	Name    string          `json:"name" yaml:"name"`
	Owner   string          `json:"owner" yaml:"owner"`
	State   lifecycle.State `json:"state" yaml:"state"`
	Version int             `json:"version" yaml:"version"`

	// Fields holds the caller-maintained data the requirement checks read.
	Fields    map[string]any  `json:"fields" yaml:"fields"`
	Approvals approval.Record `json:"approvals" yaml:"approvals"`

	History   []Transition `json:"history" yaml:"history"`
	CreatedAt time.Time    `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" yaml:"updated_at"`
}

// New returns a project at the initial lifecycle state.
func New(id, name, owner string, now time.Time) *Project {
	return &Project{
		ID:        id,
		Name:      name,
		Owner:     owner,
		State:     lifecycle.InitialState,
		Fields:    make(map[string]any),
		Approvals: make(approval.Record),
		History:   []Transition{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Snapshot returns the project data as the engine sees it. Approval flags
// take precedence over same-named fields.
func (p *Project) Snapshot() lifecycle.Snapshot {
	snap := make(lifecycle.Snapshot, len(p.Fields)+len(approval.ValidRoles()))
	for k, v := range p.Fields {
		snap[k] = v
	}
	for k, v := range p.Approvals.Flags() {
		snap[k] = v
	}
	return snap
}

// BriefPresent reports whether the brief has been completed.
func (p *Project) BriefPresent() bool {
	return p.Snapshot().Truthy(lifecycle.FieldBriefCompleted)
}

// IsOwner reports whether contact owns the project, ignoring case.
func (p *Project) IsOwner(contact string) bool {
	contact = strings.TrimSpace(contact)
	return contact != "" && strings.EqualFold(p.Owner, contact)
}

// Phase returns the phase of the project's current state.
func (p *Project) Phase() lifecycle.Phase {
	return lifecycle.PhaseOf(p.State)
}

// LastTransition returns the most recent history entry, if any.
func (p *Project) LastTransition() (Transition, bool) {
	if len(p.History) == 0 {
		return Transition{}, false
	}
	return p.History[len(p.History)-1], true
}

// ensure fills nil collections left by older records.
func (p *Project) ensure() {
	if p.Fields == nil {
		p.Fields = make(map[string]any)
	}
	if p.Approvals == nil {
		p.Approvals = make(approval.Record)
	}
	if p.History == nil {
		p.History = []Transition{}
	}
	if p.State == "" {
		p.State = lifecycle.InitialState
	}
}

// isReservedField reports whether field is derived from the approval record.
func isReservedField(field string) bool {
	for _, r := range approval.ValidRoles() {
		if field == r.Flag() {
			return true
		}
	}
	return false
}
