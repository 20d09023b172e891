package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/felixgeelhaar/slate/pkg/application"
	"github.com/felixgeelhaar/slate/pkg/domain/approval"
	"github.com/felixgeelhaar/slate/pkg/domain/project"
	"github.com/spf13/cobra"
)

var (
	createID     string
	createOwner  string
	createFields []string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Create and inspect projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project at INTAKE",
	Example: `  slate project create "Night Shift" --owner ana@studio.test
  slate project create "Night Shift" --id night-shift --set budgetEstimate=120000`,
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
		owner := createOwner
		if owner == "" {
			owner = actor
		}

		fields := make(map[string]any, len(createFields))
		for _, kv := range createFields {
			k, raw, ok := strings.Cut(kv, "=")
			if !ok || strings.TrimSpace(k) == "" {
				return NewCLIError(fmt.Sprintf("invalid --set %q", kv), "Use --set field=value", nil)
			}
			v, err := application.ParseValue(raw)
			if errors.Is(err, application.ErrNullValue) {
				return NewCLIError(fmt.Sprintf("invalid --set %q", kv), "Leave the field out instead of setting it to null", err)
			}
			if err != nil {
				return NewCLIError(fmt.Sprintf("invalid --set %q", kv), "Values cannot be empty", err)
			}
			fields[strings.TrimSpace(k)] = v
		}

		p, err := services.Projects.Create(cmd.Context(), application.CreateProjectInput{
			ID:     createID,
			Name:   args[0],
			Owner:  owner,
			Actor:  actor,
			Fields: fields,
		})
		if err != nil {
			return MapError(err)
		}

		return render(cmd, services, p, func(w io.Writer) {
			fmt.Fprintf(w, "Created project %s (%s) at %s\n", titleStyle.Render(p.Name), p.ID, p.State)
		})
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd)
		if err != nil {
			return err
		}
		projects, err := services.Projects.List(cmd.Context())
		if err != nil {
			return MapError(err)
		}

		return render(cmd, services, projects, func(w io.Writer) {
			if len(projects) == 0 {
				fmt.Fprintln(w, "No projects yet. Create one with 'slate project create <name>'.")
				return
			}
			for _, p := range projects {
				fmt.Fprintf(w, "%-24s %-18s %-16s %s\n", p.ID, p.State, p.Phase().DisplayName(), p.Name)
			}
		})
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a project's fields, approvals and history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd)
		if err != nil {
			return err
		}
		p, err := services.Projects.Get(cmd.Context(), args[0])
		if err != nil {
			return MapError(err)
		}
		return render(cmd, services, p, func(w io.Writer) { printProject(w, p) })
	},
}

var projectSetCmd = &cobra.Command{
	Use:   "set <id> <field> <value>",
	Short: "Set a field the requirement checks read",
	Example: `  slate project set night-shift briefCompleted true
  slate project set night-shift teamAssigned 12
  slate project set night-shift startDate 2026-05-01`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd)
		if err != nil {
			return err
		}
		actor, err := requireActor(services)
		if err != nil {
			return err
		}
		p, err := services.Projects.SetField(cmd.Context(), args[0], args[1], args[2], actor)
		if err != nil {
			return MapError(err)
		}
		return render(cmd, services, p, func(w io.Writer) {
			fmt.Fprintf(w, "Set %s = %v on %s\n", args[1], p.Fields[args[1]], p.ID)
		})
	},
}

var projectUnsetCmd = &cobra.Command{
	Use:   "unset <id> <field>",
	Short: "Remove a field",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd)
		if err != nil {
			return err
		}
		actor, err := requireActor(services)
		if err != nil {
			return err
		}
		p, err := services.Projects.UnsetField(cmd.Context(), args[0], args[1], actor)
		if err != nil {
			return MapError(err)
		}
		return render(cmd, services, p, func(w io.Writer) {
			fmt.Fprintf(w, "Removed %s from %s\n", args[1], p.ID)
		})
	},
}

func printProject(w io.Writer, p *project.Project) {
	fmt.Fprintf(w, "%s (%s)\n", titleStyle.Render(p.Name), p.ID)
	fmt.Fprintf(w, "Owner:   %s\n", p.Owner)
	fmt.Fprintf(w, "State:   %s (%s)\n", p.State, p.Phase().DisplayName())
	fmt.Fprintf(w, "Version: %d\n", p.Version)

	if len(p.Fields) > 0 {
		fmt.Fprintln(w, titleStyle.Render("\nFields"))
		keys := make([]string, 0, len(p.Fields))
		for k := range p.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %-22s %v\n", k, p.Fields[k])
		}
	}

	fmt.Fprintln(w, titleStyle.Render("\nApprovals"))
	for _, r := range approval.ValidRoles() {
		contact := p.Approvals.Contact(r)
		if contact == "" {
			contact = mutedStyle.Render("unassigned")
		}
		fmt.Fprintf(w, "  %s %-10s %s\n", check(p.Approvals.Approved(r)), r.Label(), contact)
	}

	if len(p.History) > 0 {
		fmt.Fprintln(w, titleStyle.Render("\nHistory"))
		for _, t := range p.History {
			line := fmt.Sprintf("  %s  %s → %s  by %s", t.At.Format("2006-01-02 15:04"), t.From, t.To, t.Actor)
			if t.Reason != "" {
				line += mutedStyle.Render(" (" + t.Reason + ")")
			}
			fmt.Fprintln(w, line)
		}
	}
}

func init() {
	projectCreateCmd.Flags().StringVar(&createID, "id", "", "Project ID (derived from the name if empty)")
	projectCreateCmd.Flags().StringVar(&createOwner, "owner", "", "Project owner (defaults to the actor)")
	projectCreateCmd.Flags().StringArrayVar(&createFields, "set", nil, "Initial field as field=value (repeatable)")

	projectCmd.AddCommand(projectCreateCmd, projectListCmd, projectShowCmd, projectSetCmd, projectUnsetCmd)
	RootCmd.AddCommand(projectCmd)
}
