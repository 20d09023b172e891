package application

import (
	"context"

	"github.com/felixgeelhaar/slate/pkg/domain/action"
	"github.com/felixgeelhaar/slate/pkg/domain/approval"
	"github.com/felixgeelhaar/slate/pkg/domain/lifecycle"
	"github.com/felixgeelhaar/slate/pkg/domain/modules"
	"github.com/felixgeelhaar/slate/pkg/domain/project"
)

// ModuleAccess is a module and whether the project may open it.
type ModuleAccess struct {
	modules.Module `yaml:",inline"`
	Accessible     bool   `json:"accessible" yaml:"accessible"`
	Message        string `json:"message,omitempty" yaml:"message,omitempty"`
}

// InsightService answers read-only questions about a project: greenlight
// progress, recommended actions and module access.
type InsightService struct {
	coord       *project.Coordinator
	roles       []approval.Role
	gate        approval.GreenlightGate
	modules     *modules.Gate
	recommender *action.Recommender
}

// NewInsightService creates a new InsightService tracking roles. A nil slice
// tracks every role.
func NewInsightService(coord *project.Coordinator, roles []approval.Role) *InsightService {
	return &InsightService{
		coord:       coord,
		roles:       roles,
		gate:        approval.NewGreenlightGate(roles),
		modules:     modules.DefaultGate,
		recommender: action.NewRecommender(),
	}
}

// Greenlight evaluates the greenlight gate for a project.
func (s *InsightService) Greenlight(ctx context.Context, id string) (approval.GreenlightStatus, error) {
	p, err := s.coord.Get(ctx, id)
	if err != nil {
		return approval.GreenlightStatus{}, err
	}
	return s.gate.Evaluate(p.Approvals, p.BriefPresent()), nil
}

// Actions recommends next steps for actor on a project.
func (s *InsightService) Actions(ctx context.Context, id, actor string) ([]action.Action, error) {
	p, err := s.coord.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.recommender.Recommend(action.Input{
		State:        p.State,
		Approvals:    p.Approvals,
		Roles:        s.roles,
		BriefPresent: p.BriefPresent(),
		Actor:        action.Actor{Email: actor, IsOwner: p.IsOwner(actor)},
	}), nil
}

// Modules lists every module with its access in the project's state.
func (s *InsightService) Modules(ctx context.Context, id string) ([]ModuleAccess, error) {
	p, err := s.coord.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.ModulesFor(p.State), nil
}

// ModulesFor lists every module with its access in state.
func (s *InsightService) ModulesFor(state lifecycle.State) []ModuleAccess {
	mods := s.modules.Modules()
	out := make([]ModuleAccess, len(mods))
	for i, m := range mods {
		msg, restricted := s.modules.RestrictedMessage(state, m.ID)
		out[i] = ModuleAccess{Module: m, Accessible: !restricted, Message: msg}
	}
	return out
}
