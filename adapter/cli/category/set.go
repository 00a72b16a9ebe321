package category

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/kafeel/adapter/cli"
	"github.com/felixgeelhaar/kafeel/internal/tracking/application/commands"
)

var setCmd = &cobra.Command{
	Use:   "set <app-id> <productive|neutral|distracting>",
	Short: "Set the category of an application",
	Long: `Store a category override for an application.

Overrides win over the built-in catalog and apply to every day scored
afterwards, including re-scored past days.

Examples:
  kafeel category set com.apple.Safari productive
  kafeel category set com.tinyspeck.slackmacgap distracting`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.TrackingService == nil {
			return cli.ErrNotInitialized
		}

		mapping, err := app.TrackingService.SetCategory(cmd.Context(), commands.SetCategoryCommand{
			AppID:    args[0],
			Category: args[1],
		})
		if err != nil {
			return fmt.Errorf("failed to set category: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", mapping.AppID, mapping.Category)
		return nil
	},
}
