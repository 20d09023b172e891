package cli

import (
	"fmt"

	"github.com/felixgeelhaar/slate/internal/infrastructure/config"
	"github.com/felixgeelhaar/slate/pkg/storage"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a slate workspace in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return err
		}

		repo := storage.NewFilesystemRepository(root)
		if repo.IsInitialized() {
			return NewCLIError("workspace already initialized", fmt.Sprintf("Remove %s to start over", repo.Dir()), nil)
		}
		if err := repo.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize workspace: %w", err)
		}

		cfg := config.Default()
		cfg.Actor = actorFlag
		if err := config.Save(root, cfg); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized slate workspace in %s\n", repo.Dir())
		return nil
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
}
