package wiring

import (
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/slate/internal/infrastructure/config"
	"github.com/felixgeelhaar/slate/pkg/application"
	"github.com/felixgeelhaar/slate/pkg/domain/approval"
	"github.com/felixgeelhaar/slate/pkg/domain/events"
	"github.com/felixgeelhaar/slate/pkg/domain/project"
)

// AppServices exposes the application layer services wired together with a
// workspace.
type AppServices struct {
	Workspace   *Workspace
	Coordinator *project.Coordinator
	Projects    *application.ProjectService
	Lifecycle   *application.LifecycleService
	Insight     *application.InsightService
	Audit       *application.AuditService
}

// Options customise BuildAppServices.
type Options struct {
	// Config replaces the config loaded from the workspace.
	Config   *config.Config
	Notifier events.Notifier
	Logger   *slog.Logger
}

// BuildAppServices loads the workspace config under root and constructs the
// services in dependency order.
func BuildAppServices(root string, opts Options) (*AppServices, error) {
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load(root)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	roles, err := cfg.Roles()
	if err != nil {
		return nil, err
	}

	ws := NewWorkspace(root, cfg, opts.Notifier, opts.Logger)
	publisher := application.NewEventPublisher(ws.Audit, ws.Dispatcher, ws.Logger)
	coord := project.NewCoordinator(ws.Repo, publisher,
		project.WithLogger(ws.Logger),
		project.WithGreenlightGate(approval.NewGreenlightGate(roles)),
	)

	policy := application.RetryPolicy{
		MaxAttempts:    cfg.Retry.MaxAttempts,
		InitialDelay:   cfg.Retry.InitialDelay,
		AttemptTimeout: cfg.Retry.AttemptTimeout,
	}

	return &AppServices{
		Workspace:   ws,
		Coordinator: coord,
		Projects:    application.NewProjectService(coord),
		Lifecycle:   application.NewLifecycleService(coord, policy, ws.Logger),
		Insight:     application.NewInsightService(coord, roles),
		Audit:       ws.Audit,
	}, nil
}
