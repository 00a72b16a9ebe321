package category

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/kafeel/adapter/cli"
)

var getCmd = &cobra.Command{
	Use:   "get <app-id>",
	Short: "Show how an application is classified",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.TrackingService == nil {
			return cli.ErrNotInitialized
		}

		res, err := app.TrackingService.Resolve(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve category: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (weight %.1f, %s)\n", res.AppID, res.Category, res.Weight(), res.Source)
		return nil
	},
}
