package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatText, Output: &buf})

		logger.Info("session recorded", "app_id", "com.apple.Terminal")

		assert.Contains(t, buf.String(), "session recorded")
		assert.Contains(t, buf.String(), "app_id=com.apple.Terminal")
	})

	t.Run("json format with service attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{
			Level:          LogLevelInfo,
			Format:         LogFormatJSON,
			Output:         &buf,
			ServiceName:    "kafeel",
			ServiceVersion: "1.2.0",
		})

		logger.Info("day evaluated", "day", "2026-04-01")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "day evaluated", entry["msg"])
		assert.Equal(t, "2026-04-01", entry["day"])
		assert.Equal(t, "kafeel", entry["service"])
		assert.Equal(t, "1.2.0", entry["version"])
	})

	t.Run("respects level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelWarn, Output: &buf})

		logger.Debug("debug line")
		logger.Info("info line")
		logger.Warn("warn line")

		assert.NotContains(t, buf.String(), "debug line")
		assert.NotContains(t, buf.String(), "info line")
		assert.Contains(t, buf.String(), "warn line")
	})

	t.Run("context ids are attached", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Format: LogFormatJSON, Output: &buf})

		ctx := WithRequestID(WithCorrelationID(context.Background(), "corr-1"), "req-2")
		logger.InfoContext(ctx, "tool called")

		assert.Contains(t, buf.String(), `"correlation_id":"corr-1"`)
		assert.Contains(t, buf.String(), `"request_id":"req-2"`)
	})
}

func TestLogConfigs(t *testing.T) {
	dev := DefaultLogConfig()
	assert.Equal(t, LogFormatText, dev.Format)
	assert.Equal(t, "kafeel", dev.ServiceName)

	prod := ProductionLogConfig()
	assert.Equal(t, LogFormatJSON, prod.Format)
	assert.True(t, prod.AddSource)
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected slog.Level
	}{
		{LogLevelDebug, slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{LogLevelInfo, slog.LevelInfo},
		{LogLevelWarn, slog.LevelWarn},
		{LogLevelError, slog.LevelError},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			assert.Equal(t, tt.expected, parseSlogLevel(tt.input))
		})
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	Component(logger, "tracker").Info("started")
	assert.Contains(t, buf.String(), "component=tracker")

	assert.NotNil(t, Component(nil, "scorer"))
}

func TestLogOperationAndDuration(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	LogOperation(logger, "rollover", "days", 3).Info("catching up")
	LogDuration(logger, "rollover", time.Now().Add(-50*time.Millisecond))

	out := buf.String()
	assert.Contains(t, out, "operation=rollover")
	assert.Contains(t, out, "days=3")
	assert.Contains(t, out, "duration_ms=")
}

func TestContextIDs(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, CorrelationIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(ctx))

	generated := WithCorrelationID(ctx, "")
	assert.Len(t, CorrelationIDFromContext(generated), 36)
}
