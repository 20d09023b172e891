package cli

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/felixgeelhaar/slate/internal/infrastructure/watch"
	"github.com/spf13/cobra"
)

const testOwner = "owner@studio.test"

func resetFlags() {
	projectPath, actorFlag, outputFlag, logLevelFlag = "", "", "", ""
	createID, createOwner, createFields = "", "", nil
	revokeApproval = false
	transitionReason = ""
	watchActions, watchDebounce, lockedOnly = false, watch.DefaultDebounce, false
	verifyAudit = false
}

func setContext(cmd *cobra.Command, ctx context.Context) {
	cmd.SetContext(ctx)
	for _, c := range cmd.Commands() {
		setContext(c, ctx)
	}
}

// runCLIContext executes the root command with args and returns everything
// written to stdout and stderr.
func runCLIContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	buf := new(bytes.Buffer)
	RootCmd.SetOut(buf)
	RootCmd.SetErr(buf)
	RootCmd.SetArgs(args)
	setContext(RootCmd, ctx)

	err := RootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLIContext(t, context.Background(), args...)
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("slate %v: %v\n%s", args, err, out)
	}
	return out
}

// newWorkspace initializes a workspace owned by testOwner and creates
// project p1 in it.
func newWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	mustRun(t, "init", "--path", dir, "--actor", testOwner)
	mustRun(t, "project", "create", "Night Shift", "--id", "p1", "--path", dir)
	return dir
}

func withTempDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	old, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
	return dir
}
