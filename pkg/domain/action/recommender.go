package action

import (
	"sort"

	"github.com/felixgeelhaar/slate/pkg/domain/approval"
	"github.com/felixgeelhaar/slate/pkg/domain/lifecycle"
	"github.com/felixgeelhaar/slate/pkg/domain/modules"
)

// Action is a recommended next step.
type Action struct {
	Kind        Kind       `json:"kind" yaml:"kind"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Priority    Priority   `json:"priority" yaml:"priority"`
	Module      modules.ID `json:"module,omitempty" yaml:"module,omitempty"`
}

// Actor is the user the recommendations are for.
type Actor struct {
	Email   string
	IsOwner bool
}

// Input is everything the recommender looks at.
type Input struct {
	State        lifecycle.State
	Approvals    approval.Record
	Roles        []approval.Role
	BriefPresent bool
	Actor        Actor
}

// Context is the input plus values derived once per recommendation.
type Context struct {
	Input
	Gate approval.GreenlightStatus

	// ActorPending lists the tracked roles the actor holds but has not yet
	// signed off.
	ActorPending []approval.Role

	// Uncontacted lists the tracked roles nobody is assigned to.
	Uncontacted []approval.Role
}

// Rule contributes zero or one action for a context.
type Rule interface {
	ID() Kind
	Evaluate(c *Context) *Action
}

// Recommender runs an ordered list of rules.
type Recommender struct {
	Rules []Rule
}

// DefaultRules returns the built-in rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		ApprovalRequiredRule{},
		AwaitingApprovalsRule{},
		ReadyToAdvanceRule{},
		AssignStakeholdersRule{},
		GreenlightBlockedRule{},
		ManageCallSheetsRule{},
	}
}

// NewRecommender returns a recommender running the built-in rules.
func NewRecommender() *Recommender {
	return &Recommender{Rules: DefaultRules()}
}

// NewContext derives the gate status and the actor's pending roles.
func NewContext(in Input) *Context {
	gate := approval.NewGreenlightGate(in.Roles)
	c := &Context{
		Input:       in,
		Gate:        gate.Evaluate(in.Approvals, in.BriefPresent),
		Uncontacted: gate.Uncontacted(in.Approvals),
	}

	for _, r := range in.Approvals.RolesFor(in.Actor.Email) {
		if gate.Tracks(r) && !in.Approvals.Approved(r) {
			c.ActorPending = append(c.ActorPending, r)
		}
	}
	return c
}

// Recommend returns the actions for in, critical first. Actions of equal
// priority keep rule order. An empty result means nothing needs attention.
func (r *Recommender) Recommend(in Input) []Action {
	c := NewContext(in)

	actions := []Action{}
	for _, rule := range r.Rules {
		if a := rule.Evaluate(c); a != nil {
			if a.Kind == "" {
				a.Kind = rule.ID()
			}
			actions = append(actions, *a)
		}
	}

	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Priority.Rank() < actions[j].Priority.Rank()
	})
	return actions
}

// Recommend runs the built-in rules.
func Recommend(in Input) []Action {
	return NewRecommender().Recommend(in)
}
