package category

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/kafeel/adapter/cli"
	"github.com/felixgeelhaar/kafeel/internal/tracking/application/queries"
)

var (
	listCategory string
	listCustom   bool
)

type mappingView struct {
	AppID    string `json:"app_id"`
	Category string `json:"category"`
	IsCustom bool   `json:"is_custom"`
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List application categories",
	Long: `List stored application categories.

Examples:
  kafeel category list
  kafeel category list --category distracting
  kafeel category list --custom`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.TrackingService == nil {
			return cli.ErrNotInitialized
		}

		mappings, err := app.TrackingService.ListCategories(cmd.Context(), queries.ListCategoriesQuery{
			Category:   listCategory,
			CustomOnly: listCustom,
		})
		if err != nil {
			return fmt.Errorf("failed to list categories: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			views := make([]mappingView, 0, len(mappings))
			for _, m := range mappings {
				views = append(views, mappingView{AppID: m.AppID, Category: string(m.Category), IsCustom: m.IsCustom})
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(views)
		}

		if len(mappings) == 0 {
			fmt.Fprintln(out, "No categories found.")
			return nil
		}
		for _, m := range mappings {
			custom := ""
			if m.IsCustom {
				custom = " (custom)"
			}
			fmt.Fprintf(out, "%-40s %s%s\n", m.AppID, m.Category, custom)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listCategory, "category", "", "only show one category (productive, neutral, distracting)")
	listCmd.Flags().BoolVar(&listCustom, "custom", false, "only show user overrides")
}
