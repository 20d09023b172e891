package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/felixgeelhaar/slate/pkg/domain"
	"github.com/spf13/cobra"
)

var verifyAudit bool

var auditCmd = &cobra.Command{
	Use:   "audit [project-id]",
	Short: "Show the audit trail, optionally for one project",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd)
		if err != nil {
			return err
		}

		if verifyAudit {
			violations, err := services.Audit.VerifyIntegrity()
			if err != nil {
				return err
			}
			if err := render(cmd, services, violations, func(w io.Writer) {
				if len(violations) == 0 {
					fmt.Fprintln(w, okStyle.Render("✓ Audit trail intact"))
					return
				}
				for _, v := range violations {
					fmt.Fprintf(w, "%s %s\n", failStyle.Render("✗"), v.String())
				}
			}); err != nil {
				return err
			}
			if len(violations) > 0 {
				return &CLIError{Message: fmt.Sprintf("audit trail has %d violation(s)", len(violations)), ExitCode: 2}
			}
			return nil
		}

		projectID := ""
		if len(args) == 1 {
			projectID = args[0]
		}
		events, err := services.Audit.Timeline(projectID)
		if err != nil {
			return err
		}
		return render(cmd, services, events, func(w io.Writer) {
			if len(events) == 0 {
				fmt.Fprintln(w, "No events recorded.")
				return
			}
			for _, e := range events {
				fmt.Fprintf(w, "%s  %-22s %-14s %s %s\n",
					e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Action, e.ProjectID, e.Actor,
					mutedStyle.Render(formatMetadata(e)))
			}
		})
	},
}

func formatMetadata(e domain.Event) string {
	keys := make([]string, 0, len(e.Metadata))
	for k := range e.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, e.Metadata[k])
	}
	return strings.Join(parts, " ")
}

func init() {
	auditCmd.Flags().BoolVar(&verifyAudit, "verify", false, "Verify the hash chain instead of listing events")
	RootCmd.AddCommand(auditCmd)
}
