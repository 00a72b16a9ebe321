package category

import (
	"github.com/spf13/cobra"
)

// Cmd is the category command group
var Cmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"categories"},
	Short:   "Manage application categories",
	Long: `Show and override how applications are classified.

Every application is productive, neutral or distracting. Unknown
applications count as neutral until a category is set for them.`,
}

func init() {
	Cmd.AddCommand(setCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
}
