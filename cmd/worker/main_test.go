package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/kafeel/internal/app"
	"github.com/felixgeelhaar/kafeel/pkg/config"
)

func TestNewMux(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		AppEnv:              "test",
		SQLitePath:          filepath.Join(t.TempDir(), "kafeel.db"),
		MinSessionDuration:  2 * time.Second,
		ProductiveThreshold: 60,
		LevelBaseXP:         100,
		EventBroker:         config.BrokerNone,
	}
	container, err := app.NewContainer(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(container.Close)

	processor := container.NewOutboxProcessor(app.NewInProcessPublisher(logger, container.Metrics))
	srv := httptest.NewServer(newMux(container, processor))
	t.Cleanup(srv.Close)

	t.Run("healthz reports a stopped processor", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, false, body["running"])
	})

	t.Run("healthz reports a running processor", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		processor.Start(ctx)
		defer processor.Stop()

		resp, err := http.Get(srv.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("readyz checks the database", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/readyz")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("metrics are exposed", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
