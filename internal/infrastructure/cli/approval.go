package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var revokeApproval bool

var assignCmd = &cobra.Command{
	Use:     "assign <id> <role> <contact>",
	Short:   "Name the contact responsible for an approval role (owner only)",
	Example: `  slate assign night-shift legal lee@studio.test`,
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd)
		if err != nil {
			return err
		}
		actor, err := requireActor(services)
		if err != nil {
			return err
		}
		p, err := services.Projects.Assign(cmd.Context(), args[0], args[1], args[2], actor)
		if err != nil {
			return MapError(err)
		}
		return render(cmd, services, p.Approvals, func(w io.Writer) {
			fmt.Fprintf(w, "%s contact for %s is now %s\n", args[1], p.ID, args[2])
		})
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve <id> <role>",
	Short: "Record a role's sign-off",
	Example: `  slate approve night-shift finance
  slate approve night-shift finance --revoke`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd)
		if err != nil {
			return err
		}
		actor, err := requireActor(services)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if revokeApproval {
			_, err = services.Projects.Revoke(ctx, args[0], args[1], actor)
		} else {
			_, err = services.Projects.Approve(ctx, args[0], args[1], actor)
		}
		if err != nil {
			return MapError(err)
		}

		status, err := services.Insight.Greenlight(ctx, args[0])
		if err != nil {
			return MapError(err)
		}
		return render(cmd, services, status, func(w io.Writer) {
			verb := "approved"
			if revokeApproval {
				verb = "revoked"
			}
			fmt.Fprintf(w, "%s %s on %s (%d/%d approvals)\n",
				args[1], verb, args[0], status.CompletedCount, status.TotalCount)
		})
	},
}

func init() {
	approveCmd.Flags().BoolVar(&revokeApproval, "revoke", false, "Withdraw the sign-off instead")
	RootCmd.AddCommand(assignCmd, approveCmd)
}
