package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peerdex/peerdex/internal/cli/credentials"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := credentials.NewStore()
		if err != nil {
			return fmt.Errorf("failed to open profile store: %w", err)
		}
		if err := store.Clear(); err != nil {
			return fmt.Errorf("failed to remove profile: %w", err)
		}
		fmt.Println("Profile removed.")
		return nil
	},
}
