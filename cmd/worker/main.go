package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/kafeel/internal/app"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/kafeel/pkg/config"
	"github.com/felixgeelhaar/kafeel/pkg/observability"
)

const (
	cleanupInterval = time.Hour
	statsInterval   = time.Minute
	defaultAddr     = ":9090"
)

func main() {
	logger := observability.NewLogger(observability.DefaultLogConfig())
	logger.Info("starting kafeel worker")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logCfg := observability.ProductionLogConfig()
	if cfg.IsDevelopment() {
		logCfg = observability.DefaultLogConfig()
		logCfg.Level = observability.LogLevelDebug
	}
	logCfg.ServiceName = "kafeel-worker"
	logger = observability.NewLogger(logCfg)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	publisher, err := app.NewEventPublisher(cfg, logger, container.Metrics)
	if err != nil {
		logger.Error("failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()
	logger.Info("event publisher initialized", "broker", cfg.EventBroker)

	processor := container.NewOutboxProcessor(publisher)
	processor.Start(ctx)

	go runCleanup(ctx, processor, logger)
	go logStats(ctx, processor, container, logger)

	addr := cfg.MetricsAddr
	if addr == "" {
		addr = defaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           newMux(container, processor),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("health server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server error", "error", err)
		}
	}()

	// Wait for shutdown
	<-ctx.Done()
	logger.Info("shutting down worker")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("health server shutdown error", "error", err)
	}

	processor.Stop()
	logger.Info("worker stopped")
}

func newMux(container *app.Container, processor *outbox.Processor) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", container.Metrics.Handler())
	mux.Handle("/readyz", container.Health.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		stats := processor.GetStats()
		status := http.StatusOK
		if !stats.IsRunning {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"running":           stats.IsRunning,
			"published":         stats.PublishedCount,
			"failed":            stats.FailedCount,
			"dead":              stats.DeadCount,
			"lag_seconds":       stats.LagSeconds,
			"last_processed_at": stats.LastProcessedAt,
			"last_error_at":     stats.LastErrorAt,
			"last_error":        stats.LastError,
		})
	})
	return mux
}

func runCleanup(ctx context.Context, processor *outbox.Processor, logger *slog.Logger) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := processor.Cleanup(ctx); err != nil {
				logger.Error("outbox cleanup failed", "error", err)
			}
		}
	}
}

func logStats(ctx context.Context, processor *outbox.Processor, container *app.Container, logger *slog.Logger) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := processor.GetStats()
			pending, err := container.OutboxRepo.CountPending(ctx)
			if err != nil {
				logger.Warn("failed to count pending outbox messages", "error", err)
			}
			logger.Info("outbox stats",
				"running", stats.IsRunning,
				"pending", pending,
				"published", stats.PublishedCount,
				"failed", stats.FailedCount,
				"dead", stats.DeadCount,
				"lag_seconds", stats.LagSeconds,
				"last_error", stats.LastError,
			)
		}
	}
}
