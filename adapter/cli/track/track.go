package track

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/kafeel/adapter/cli"
	"github.com/felixgeelhaar/kafeel/internal/gamification/application/commands"
	"github.com/felixgeelhaar/kafeel/internal/tracking/domain"
	"github.com/felixgeelhaar/kafeel/internal/tracking/infrastructure/source"
)

const eventBuffer = 64

var (
	fromStdin   bool
	pluginPath  string
	metricsAddr string
	skipCatchUp bool
)

// eventSource produces system events until its input ends or ctx is done.
type eventSource interface {
	Run(ctx context.Context, out chan<- domain.SystemEvent) error
}

// Cmd runs the session tracker in the foreground.
var Cmd = &cobra.Command{
	Use:   "track",
	Short: "Track foreground applications",
	Long: `Run the session tracker until interrupted.

Events come from a watcher plugin binary or, with --stdin, from JSON lines:

  {"type":"foreground","app_id":"com.microsoft.VSCode","display_name":"Code","at":"2026-03-02T09:00:00+01:00"}
  {"type":"lock","at":"2026-03-02T12:00:00+01:00"}
  {"type":"unlock","at":"2026-03-02T13:00:00+01:00"}

Finished days that were missed while not tracking are evaluated first.

Examples:
  kafeel track --plugin ~/.kafeel/plugins/macos-watcher
  some-watcher | kafeel track --stdin
  kafeel track --stdin --metrics-addr :9090 < events.jsonl`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Tracker == nil {
			return cli.ErrNotInitialized
		}
		logger := cli.Logger()
		ctx := cmd.Context()

		if !skipCatchUp {
			results, err := app.GamificationService.CatchUp(ctx, commands.CatchUpCommand{Now: time.Now()})
			if err != nil {
				logger.Error("catch-up failed", "evaluated", len(results), "error", err)
			} else if len(results) > 0 {
				logger.Info("caught up on missed days", "evaluated", len(results))
			}
		}

		src, closeSource, err := openSource(cmd, app, logger)
		if err != nil {
			return err
		}
		defer closeSource()

		addr := metricsAddr
		if addr == "" && app.Config != nil {
			addr = app.Config.MetricsAddr
		}
		if addr != "" && app.MetricsHandler != nil {
			stop := serveMetrics(addr, app.MetricsHandler, logger)
			defer stop()
		}

		app.Tracker.OnError(saveFailureReporter(cmd.ErrOrStderr()))
		return run(ctx, app, src, logger)
	},
}

// saveFailureReporter prints every failed save so a foreground run does not
// lose progress silently. Tracking continues after a failure.
func saveFailureReporter(w io.Writer) func(error) {
	return func(err error) {
		fmt.Fprintf(w, "could not save progress: %v\n", err)
	}
}

func openSource(cmd *cobra.Command, app *cli.App, logger *slog.Logger) (eventSource, func(), error) {
	path := pluginPath
	if path == "" && !fromStdin && app.Config != nil {
		path = app.Config.WatcherPlugin
	}

	switch {
	case fromStdin:
		return source.NewLineReader(cmd.InOrStdin(), logger), func() {}, nil
	case path != "":
		timeout := time.Second
		if app.Config != nil && app.Config.WatcherPluginTimeout > 0 {
			timeout = app.Config.WatcherPluginTimeout
		}
		plugin, err := source.LaunchPlugin(path, timeout, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to start watcher plugin: %w", err)
		}
		app.Tracker.WithSampler(plugin)
		return plugin, plugin.Close, nil
	default:
		return nil, nil, errors.New("no event source: pass --stdin or --plugin, or set KAFEEL_WATCHER_PLUGIN")
	}
}

// run feeds the tracker from src. The tracker finalizes the open session
// when src ends or ctx is cancelled.
func run(ctx context.Context, app *cli.App, src eventSource, logger *slog.Logger) error {
	events := make(chan domain.SystemEvent, eventBuffer)
	srcErr := make(chan error, 1)

	go func() {
		defer close(events)
		srcErr <- src.Run(ctx, events)
	}()

	logger.Info("tracking started")
	trackErr := app.Tracker.Run(ctx, events)

	var err error
	select {
	case err = <-srcErr:
	case <-ctx.Done():
		// A reader blocked on input does not observe cancellation.
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("event source stopped", "error", err)
	} else {
		err = nil
	}
	logger.Info("tracking stopped")
	return errors.Join(trackErr, err)
}

func serveMetrics(addr string, handler http.Handler, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}

func init() {
	Cmd.Flags().BoolVar(&fromStdin, "stdin", false, "read JSON-lines events from standard input")
	Cmd.Flags().StringVar(&pluginPath, "plugin", "", "path to a watcher plugin binary")
	Cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	Cmd.Flags().BoolVar(&skipCatchUp, "no-catch-up", false, "skip evaluating missed days on start")
}
