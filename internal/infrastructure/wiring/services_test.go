package wiring

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/felixgeelhaar/slate/internal/infrastructure/config"
	"github.com/felixgeelhaar/slate/pkg/application"
	"github.com/felixgeelhaar/slate/pkg/domain/lifecycle"
	"github.com/felixgeelhaar/slate/pkg/storage"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, title+": "+message)
	return nil
}

func initWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := storage.NewFilesystemRepository(root).Initialize(); err != nil {
		t.Fatalf("init workspace: %v", err)
	}
	return root
}

func TestBuildAppServicesDefaults(t *testing.T) {
	services, err := BuildAppServices(initWorkspace(t), Options{})
	if err != nil {
		t.Fatalf("build services failed: %v", err)
	}
	if services.Workspace == nil || services.Projects == nil || services.Lifecycle == nil || services.Insight == nil {
		t.Fatalf("expected non-nil services, got %+v", services)
	}
	if services.Workspace.Config.Output != config.OutputText {
		t.Errorf("expected default output, got %s", services.Workspace.Config.Output)
	}
}

func TestBuildAppServicesInvalidConfig(t *testing.T) {
	root := initWorkspace(t)
	path := filepath.Join(root, storage.SlateDir, storage.ConfigFile)
	if err := os.WriteFile(path, []byte("tracked_roles: [gaffer]\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := BuildAppServices(root, Options{}); err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestBuildAppServices_TrackedRolesAndNotifier(t *testing.T) {
	root := initWorkspace(t)
	cfg := config.Default()
	cfg.TrackedRoles = []string{"producer"}
	notifier := &recordingNotifier{}

	services, err := BuildAppServices(root, Options{Config: cfg, Notifier: notifier})
	if err != nil {
		t.Fatalf("build services failed: %v", err)
	}

	ctx := context.Background()
	owner := "owner@studio.test"
	if _, err := services.Projects.Create(ctx, application.CreateProjectInput{ID: "p1", Name: "Night Shift", Owner: owner}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := services.Projects.SetField(ctx, "p1", "briefCompleted", "true", owner); err != nil {
		t.Fatalf("set brief: %v", err)
	}
	if _, err := services.Projects.Assign(ctx, "p1", "producer", owner, owner); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := services.Projects.Approve(ctx, "p1", "producer", owner); err != nil {
		t.Fatalf("approve: %v", err)
	}

	status, err := services.Insight.Greenlight(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if !status.AllRequirementsMet || status.TotalCount != 1 {
		t.Errorf("expected gate open over one role, got %+v", status)
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("expected one greenlight notification, got %v", notifier.messages)
	}

	violations, err := services.Audit.VerifyIntegrity()
	if err != nil || len(violations) != 0 {
		t.Errorf("audit trail not intact: %v %v", violations, err)
	}
	if _, err := os.Stat(filepath.Join(root, storage.SlateDir, storage.ProjectFile("p1"))); err != nil {
		t.Errorf("project file not written: %v", err)
	}

	// The configured roles also decide what entering GREENLIT requires.
	if _, err := services.Projects.SetField(ctx, "p1", "budgetEstimate", "50000", owner); err != nil {
		t.Fatalf("set budget: %v", err)
	}
	for _, target := range []lifecycle.State{lifecycle.StateLegalReview, lifecycle.StateBudgetApproval, status.AdvanceTarget} {
		if _, err := services.Lifecycle.Transition(ctx, "p1", target, owner, ""); err != nil {
			t.Fatalf("transition to %s: %v", target, err)
		}
	}
}
