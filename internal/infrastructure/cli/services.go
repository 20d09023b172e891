package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/slate/internal/infrastructure/config"
	"github.com/felixgeelhaar/slate/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/slate/pkg/storage"
	"github.com/spf13/cobra"
)

var (
	errNotInitialized = errors.New("workspace not initialized")
	errNoActor        = errors.New("no actor")
)

func getProjectRoot() (string, error) {
	if projectPath != "" {
		abs, err := filepath.Abs(projectPath)
		if err != nil {
			return "", fmt.Errorf("invalid project path %q: %w", projectPath, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("project path %q: %w", abs, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("project path %q is not a directory", abs)
		}
		return abs, nil
	}
	return os.Getwd()
}

// loadConfig reads the workspace config and applies the global flags.
func loadConfig(root string) (*config.Config, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	if actorFlag != "" {
		cfg.Actor = actorFlag
	}
	if outputFlag != "" {
		cfg.Output = strings.ToLower(outputFlag)
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadServices(cmd *cobra.Command) (*wiring.AppServices, error) {
	root, err := getProjectRoot()
	if err != nil {
		return nil, err
	}
	if !storage.NewFilesystemRepository(root).IsInitialized() {
		return nil, MapError(fmt.Errorf("%w: %s", errNotInitialized, root))
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}

	return wiring.BuildAppServices(root, wiring.Options{
		Config:   cfg,
		Notifier: newBannerNotifier(cmd.ErrOrStderr()),
		Logger:   newLogger(cmd, level),
	})
}

// requireActor returns the configured actor.
func requireActor(services *wiring.AppServices) (string, error) {
	actor := strings.TrimSpace(services.Workspace.Config.Actor)
	if actor == "" {
		return "", MapError(errNoActor)
	}
	return actor, nil
}
