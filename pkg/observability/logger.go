// Package observability provides structured logging, metrics and health
// checks for the tracker and its worker.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LogFormat specifies the output format for logs.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// LogLevel represents logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogConfig configures the logger.
type LogConfig struct {
	Level  LogLevel
	Format LogFormat
	// Output defaults to os.Stderr. The tracker keeps stdout free for
	// command output and the JSON-lines event stream.
	Output         io.Writer
	AddSource      bool
	ServiceName    string
	ServiceVersion string
}

// DefaultLogConfig returns the development defaults.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:          LogLevelInfo,
		Format:         LogFormatText,
		Output:         os.Stderr,
		ServiceName:    "kafeel",
		ServiceVersion: "dev",
	}
}

// ProductionLogConfig returns JSON logs with source locations.
func ProductionLogConfig() LogConfig {
	return LogConfig{
		Level:          LogLevelInfo,
		Format:         LogFormatJSON,
		Output:         os.Stderr,
		AddSource:      true,
		ServiceName:    "kafeel",
		ServiceVersion: "unknown",
	}
}

// NewLogger creates a structured logger. Records logged with a context
// carry its correlation and request ids.
func NewLogger(cfg LogConfig) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     parseSlogLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case LogFormatJSON:
		handler = slog.NewJSONHandler(cfg.Output, opts)
	default:
		handler = slog.NewTextHandler(cfg.Output, opts)
	}

	var attrs []slog.Attr
	if cfg.ServiceName != "" {
		attrs = append(attrs, slog.String("service", cfg.ServiceName))
	}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, slog.String("version", cfg.ServiceVersion))
	}

	return slog.New(&attributeHandler{handler: handler, attrs: attrs})
}

func parseSlogLevel(level LogLevel) slog.Level {
	switch LogLevel(strings.ToLower(string(level))) {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type attributeHandler struct {
	handler slog.Handler
	attrs   []slog.Attr
}

func (h *attributeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *attributeHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(h.attrs...)
	if id := CorrelationIDFromContext(ctx); id != "" {
		r.AddAttrs(slog.String(CorrelationIDKey, id))
	}
	if id := RequestIDFromContext(ctx); id != "" {
		r.AddAttrs(slog.String(RequestIDKey, id))
	}
	return h.handler.Handle(ctx, r)
}

func (h *attributeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &attributeHandler{handler: h.handler.WithAttrs(attrs), attrs: h.attrs}
}

func (h *attributeHandler) WithGroup(name string) slog.Handler {
	return &attributeHandler{handler: h.handler.WithGroup(name), attrs: h.attrs}
}

// Component scopes logger to a named component. A nil logger falls back to
// slog.Default().
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(ComponentKey, name)
}

// LogOperation creates a logger with operation-specific attributes.
func LogOperation(logger *slog.Logger, operation string, attrs ...any) *slog.Logger {
	args := append([]any{OperationKey, operation}, attrs...)
	return logger.With(args...)
}

// LogDuration logs how long an operation took.
func LogDuration(logger *slog.Logger, operation string, start time.Time) {
	logger.Info("operation completed",
		OperationKey, operation,
		DurationKey, time.Since(start).Milliseconds(),
	)
}
