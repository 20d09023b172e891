package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/slate/pkg/application"
	"github.com/felixgeelhaar/slate/pkg/domain/lifecycle"
	"github.com/spf13/cobra"
)

var transitionReason string

func parseTarget(arg string) (lifecycle.State, error) {
	s, err := lifecycle.ParseState(strings.ToUpper(strings.ReplaceAll(arg, "-", "_")))
	if err != nil {
		return "", NewCLIError(fmt.Sprintf("unknown state %q", arg), "Run 'slate status <id>' to see the states you can move to", err)
	}
	return s, nil
}

var statusCmd = &cobra.Command{
	Use:   "status <id>",
	Short: "Show where a project is and where it can go next",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd)
		if err != nil {
			return err
		}
		status, err := services.Lifecycle.Status(cmd.Context(), args[0])
		if err != nil {
			return MapError(err)
		}
		return render(cmd, services, status, func(w io.Writer) { printStatus(w, status) })
	},
}

func printStatus(w io.Writer, s *application.ProjectStatus) {
	p := s.Project
	fmt.Fprintf(w, "%s (%s)\n", titleStyle.Render(p.Name), p.ID)
	fmt.Fprintf(w, "State: %s  Phase: %s\n", p.State.DisplayName(), s.Phase.DisplayName())

	phases := make([]string, len(s.AccessiblePhases))
	for i, ph := range s.AccessiblePhases {
		phases[i] = ph.DisplayName()
	}
	fmt.Fprintf(w, "Open phases: %s\n", strings.Join(phases, ", "))

	if len(s.NextStates) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("\nNo further transitions."))
		return
	}
	fmt.Fprintln(w, titleStyle.Render("\nNext"))
	for _, n := range s.NextStates {
		line := fmt.Sprintf("  %s %-18s", check(n.Check.CanTransition), n.State)
		if missing := len(n.Check.MissingRequirements); missing > 0 {
			line += mutedStyle.Render(fmt.Sprintf(" %d requirement(s) missing", missing))
		}
		fmt.Fprintln(w, line)
	}
}

var requirementsCmd = &cobra.Command{
	Use:     "requirements <id> <state>",
	Short:   "Check a project against the requirements of a target state",
	Example: `  slate requirements night-shift PRODUCTION`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := parseTarget(args[1])
		if err != nil {
			return err
		}
		services, err := loadServices(cmd)
		if err != nil {
			return err
		}
		reqs, err := services.Lifecycle.Requirements(cmd.Context(), args[0], target)
		if err != nil {
			return MapError(err)
		}
		return render(cmd, services, reqs, func(w io.Writer) {
			if len(reqs) == 0 {
				fmt.Fprintf(w, "%s has no requirements.\n", target)
				return
			}
			fmt.Fprintf(w, "%s\n", titleStyle.Render("Requirements for "+target.DisplayName()))
			for _, r := range reqs {
				label := r.Label
				if !r.Required {
					label += mutedStyle.Render(" (optional)")
				}
				fmt.Fprintf(w, "  %s %-32s %s\n", check(r.Satisfied), label, mutedStyle.Render(r.Field))
			}
		})
	},
}

var transitionCmd = &cobra.Command{
	Use:   "transition <id> <state>",
	Short: "Move a project to another lifecycle state",
	Example: `  slate transition night-shift LEGAL_REVIEW
  slate transition night-shift on-hold --reason "financing paused"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := parseTarget(args[1])
		if err != nil {
			return err
		}
		services, err := loadServices(cmd)
		if err != nil {
			return err
		}
		actor, err := requireActor(services)
		if err != nil {
			return err
		}

		p, err := services.Lifecycle.Transition(cmd.Context(), args[0], target, actor, transitionReason)
		if err != nil {
			return MapError(err)
		}
		return render(cmd, services, p, func(w io.Writer) {
			t, _ := p.LastTransition()
			fmt.Fprintf(w, "%s %s moved %s → %s\n", okStyle.Render("✓"), p.ID, t.From, t.To)
		})
	},
}

func init() {
	transitionCmd.Flags().StringVar(&transitionReason, "reason", "", "Why the project is moving")
	RootCmd.AddCommand(statusCmd, requirementsCmd, transitionCmd)
}
