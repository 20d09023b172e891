// Package wiring assembles the workspace infrastructure and application
// services the CLI runs against.
package wiring

import (
	"log/slog"

	"github.com/felixgeelhaar/slate/internal/infrastructure/config"
	"github.com/felixgeelhaar/slate/pkg/application"
	"github.com/felixgeelhaar/slate/pkg/domain/events"
	"github.com/felixgeelhaar/slate/pkg/storage"
)

// Workspace bundles core infrastructure dependencies.
type Workspace struct {
	Root       string
	Config     *config.Config
	Repo       *storage.FilesystemRepository
	Audit      *application.AuditService
	Dispatcher *events.EventDispatcher
	Logger     *slog.Logger
}

// NewWorkspace opens the workspace at root. Handlers for logging,
// transitions and greenlight notifications are registered on the
// dispatcher; notifier may be nil.
func NewWorkspace(root string, cfg *config.Config, notifier events.Notifier, logger *slog.Logger) *Workspace {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	repo := storage.NewFilesystemRepository(root).WithRetry(cfg.Retry.MaxAttempts, cfg.Retry.InitialDelay)

	dispatcher := events.NewEventDispatcher()
	dispatcher.ContinueOnError = true
	dispatcher.Register(events.NewLoggingHandler(logger).Registration())
	dispatcher.Register(events.NewTransitionHandler(logger).Registration())
	dispatcher.Register(events.NewGreenlightHandler(notifier, logger).Registration())

	return &Workspace{
		Root:       root,
		Config:     cfg,
		Repo:       repo,
		Audit:      application.NewAuditService(repo),
		Dispatcher: dispatcher,
		Logger:     logger,
	}
}
