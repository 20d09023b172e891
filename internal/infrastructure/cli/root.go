package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Global flags.
var (
	projectPath  string
	actorFlag    string
	outputFlag   string
	logLevelFlag string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "slate",
	Version: Version,
	Short:   "Lifecycle engine for film and video productions",
	Long: `Slate tracks a production from intake to archive.
It answers:
1. Where is this project in its lifecycle?
2. What is blocking the next step?
3. What should I do next?`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := RootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(RootCmd, err)
	}
	return err
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	var cliErr *CLIError
	if errors.As(err, &cliErr) && cliErr.ExitCode != 0 {
		return cliErr.ExitCode
	}
	return 1
}

func printError(cmd *cobra.Command, err error) {
	w := cmd.ErrOrStderr()
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		fmt.Fprintln(w, failStyle.Render("Error: ")+cliErr.Message)
		if cliErr.Hint != "" {
			fmt.Fprintln(w, mutedStyle.Render("Hint: "+cliErr.Hint))
		}
		return
	}
	fmt.Fprintln(w, failStyle.Render("Error: ")+err.Error())
}

func newLogger(cmd *cobra.Command, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func init() {
	RootCmd.PersistentFlags().StringVar(&projectPath, "path", "", "Workspace root (defaults to the current directory)")
	RootCmd.PersistentFlags().StringVar(&actorFlag, "actor", "", "Identity recorded on changes (overrides config)")
	RootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "Output format: text, json or yaml (overrides config)")
	RootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
}
