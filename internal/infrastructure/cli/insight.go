package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/felixgeelhaar/slate/internal/infrastructure/watch"
	"github.com/felixgeelhaar/slate/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/slate/pkg/application"
	"github.com/felixgeelhaar/slate/pkg/domain/action"
	"github.com/felixgeelhaar/slate/pkg/domain/approval"
	"github.com/spf13/cobra"
)

var (
	watchActions  bool
	watchDebounce time.Duration
	lockedOnly    bool
)

var greenlightCmd = &cobra.Command{
	Use:   "greenlight <id>",
	Short: "Show progress toward greenlight",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd)
		if err != nil {
			return err
		}
		status, err := services.Insight.Greenlight(cmd.Context(), args[0])
		if err != nil {
			return MapError(err)
		}
		return render(cmd, services, status, func(w io.Writer) { printGreenlight(w, status) })
	},
}

func printGreenlight(w io.Writer, s approval.GreenlightStatus) {
	fmt.Fprintf(w, "%s %3.0f%%  %d/%d approvals\n",
		progressBar(s.ProgressPercentage, 20), s.ProgressPercentage, s.CompletedCount, s.TotalCount)
	fmt.Fprintf(w, "  %s Brief completed\n", check(s.BriefPresent))
	for _, p := range s.PendingApprovers {
		fmt.Fprintf(w, "  %s Waiting on %s (%s)\n", warnStyle.Render("…"), p.Label, p.Contact)
	}
	for _, r := range s.Unassigned {
		fmt.Fprintf(w, "  %s %s has no contact\n", failStyle.Render("!"), r.Label())
	}
	if s.CanAdvance {
		fmt.Fprintf(w, "%s Ready to move to %s\n", okStyle.Render("✓"), s.AdvanceTarget)
	}
}

var actionsCmd = &cobra.Command{
	Use:   "actions <id>",
	Short: "Recommend what to do next on a project",
	Long: `Recommend what to do next on a project, most urgent first.

With --watch the recommendations are refreshed whenever the project record
changes, until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd)
		if err != nil {
			return err
		}
		actor, err := requireActor(services)
		if err != nil {
			return err
		}

		id := args[0]
		if err := showActions(cmd, services, id, actor); err != nil {
			return err
		}
		if !watchActions {
			return nil
		}
		return watchProject(cmd, services, id, func() error {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", mutedStyle.Render("Updated "+time.Now().Format("15:04:05")))
			return showActions(cmd, services, id, actor)
		})
	},
}

func showActions(cmd *cobra.Command, services *wiring.AppServices, id, actor string) error {
	actions, err := services.Insight.Actions(cmd.Context(), id, actor)
	if err != nil {
		return MapError(err)
	}
	return render(cmd, services, actions, func(w io.Writer) { printActions(w, actions) })
}

func printActions(w io.Writer, actions []action.Action) {
	if len(actions) == 0 {
		fmt.Fprintln(w, okStyle.Render("All caught up."))
		return
	}
	for _, a := range actions {
		tag := priorityStyle(a.Priority).Render(fmt.Sprintf("[%s]", strings.ToUpper(a.Priority.String())))
		fmt.Fprintf(w, "%-10s %s\n", tag, titleStyle.Render(a.Title))
		fmt.Fprintf(w, "           %s", a.Description)
		if a.Module != "" {
			fmt.Fprint(w, mutedStyle.Render(" → "+a.Module.String()))
		}
		fmt.Fprintln(w)
	}
}

// watchProject calls refresh after every change to the project record until
// the command's context ends.
func watchProject(cmd *cobra.Command, services *wiring.AppServices, id string, refresh func() error) error {
	ctx := cmd.Context()
	changes := make(chan watch.Change, 1)
	w, err := watch.NewProjectWatcher(services.Workspace.Root, watchDebounce, func(c watch.Change) {
		if c.ProjectID != id {
			return
		}
		select {
		case changes <- c:
		default:
		}
	}, services.Workspace.Logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for {
		select {
		case <-ctx.Done():
			<-done
			return nil
		case err := <-done:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		case c := <-changes:
			if c.Removed {
				return MapError(fmt.Errorf("project %s was removed", id))
			}
			if err := refresh(); err != nil {
				return err
			}
		}
	}
}

var modulesCmd = &cobra.Command{
	Use:   "modules <id>",
	Short: "List the workspace modules a project can open",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd)
		if err != nil {
			return err
		}
		mods, err := services.Insight.Modules(cmd.Context(), args[0])
		if err != nil {
			return MapError(err)
		}
		if lockedOnly {
			locked := []application.ModuleAccess{}
			for _, m := range mods {
				if !m.Accessible {
					locked = append(locked, m)
				}
			}
			mods = locked
		}
		return render(cmd, services, mods, func(w io.Writer) {
			for _, m := range mods {
				line := fmt.Sprintf("  %s %-18s", check(m.Accessible), m.Name)
				if m.Message != "" {
					line += mutedStyle.Render(" " + m.Message)
				}
				fmt.Fprintln(w, line)
			}
		})
	},
}

func init() {
	actionsCmd.Flags().BoolVar(&watchActions, "watch", false, "Refresh when the project changes")
	actionsCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before refreshing")
	modulesCmd.Flags().BoolVar(&lockedOnly, "locked", false, "Show only locked modules")
	RootCmd.AddCommand(greenlightCmd, actionsCmd, modulesCmd)
}
