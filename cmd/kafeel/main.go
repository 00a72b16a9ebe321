package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/kafeel/adapter/cli"
	"github.com/felixgeelhaar/kafeel/adapter/cli/category"
	"github.com/felixgeelhaar/kafeel/adapter/cli/mcp"
	"github.com/felixgeelhaar/kafeel/adapter/cli/track"
	"github.com/felixgeelhaar/kafeel/internal/app"
	mcpinternal "github.com/felixgeelhaar/kafeel/internal/mcp"
	"github.com/felixgeelhaar/kafeel/pkg/config"
	"github.com/felixgeelhaar/kafeel/pkg/observability"
)

func main() {
	logger := observability.NewLogger(observability.DefaultLogConfig())

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	cfg.Version = cli.Version

	logger = newLogger(cfg)
	slog.SetDefault(logger)
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		// version and help still work without a store in development
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		cli.SetApp(mcpinternal.NewCLIApp(container))
	}

	cli.AddCommand(track.Cmd)
	cli.AddCommand(category.Cmd)
	cli.AddCommand(mcp.Cmd)

	err = cli.Execute(ctx)
	if container != nil {
		container.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	logCfg := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		logCfg = observability.ProductionLogConfig()
	}
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	if cfg.LogFormat != "" {
		logCfg.Format = observability.LogFormat(cfg.LogFormat)
	}
	logCfg.ServiceVersion = cfg.Version
	return observability.NewLogger(logCfg)
}
