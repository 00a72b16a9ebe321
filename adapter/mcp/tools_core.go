package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/kafeel/adapter/cli"
)

func registerCoreTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("health").
		Description("Check that the store is reachable").
		Handler(func(ctx context.Context, input struct{}) (map[string]string, error) {
			if app == nil || app.GamificationService == nil {
				return nil, errors.New("app not initialized")
			}
			if _, err := app.GamificationService.Profile(ctx); err != nil {
				return map[string]string{"status": "unhealthy", "error": err.Error()}, nil
			}
			return map[string]string{"status": "ok"}, nil
		})

	srv.Tool("version").
		Description("Get version information").
		Handler(func(ctx context.Context, input struct{}) (map[string]string, error) {
			return map[string]string{
				"version":   cli.Version,
				"commit":    cli.Commit,
				"buildDate": cli.BuildDate,
			}, nil
		})

	return nil
}
