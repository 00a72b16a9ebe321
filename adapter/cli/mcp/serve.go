package mcp

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/kafeel/adapter/cli"
	mcpinternal "github.com/felixgeelhaar/kafeel/internal/mcp"
)

var addr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Expose scores, streaks, achievements, records and the live tracker
status to MCP clients over HTTP.

Set MCP_AUTH_TOKEN to require a bearer token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Config == nil {
			return cli.ErrNotInitialized
		}

		cfg := *app.Config
		if addr != "" {
			cfg.MCPAddr = addr
		}

		err := mcpinternal.Serve(cmd.Context(), &cfg, app, cli.Logger())
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to MCP_ADDR)")
}
