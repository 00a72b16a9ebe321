package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the store is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.GamificationService == nil {
			return ErrNotInitialized
		}
		if _, err := app.GamificationService.Profile(cmd.Context()); err != nil {
			return fmt.Errorf("store not reachable: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
