package mcp

import (
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/kafeel/adapter/cli"
)

// ToolDependencies provides the services MCP tools read from.
type ToolDependencies struct {
	App *cli.App
}

// RegisterTools registers the read-only query tools.
func RegisterTools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	if err := registerCoreTools(srv, deps); err != nil {
		return err
	}
	if err := registerFocusTools(srv, deps); err != nil {
		return err
	}
	if err := registerProgressTools(srv, deps); err != nil {
		return err
	}
	if err := registerTrackingTools(srv, deps); err != nil {
		return err
	}

	return nil
}
