package source

import (
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/hashicorp/go-hclog"
)

// hclogAdapter forwards go-plugin logging to slog.
type hclogAdapter struct {
	logger *slog.Logger
	name   string
}

func newHclogAdapter(logger *slog.Logger, name string) *hclogAdapter {
	return &hclogAdapter{logger: logger, name: name}
}

func (h *hclogAdapter) Log(level hclog.Level, msg string, args ...interface{}) {
	switch level {
	case hclog.Trace, hclog.Debug:
		h.logger.Debug(msg, args...)
	case hclog.Info:
		h.logger.Info(msg, args...)
	case hclog.Warn:
		h.logger.Warn(msg, args...)
	case hclog.Error:
		h.logger.Error(msg, args...)
	default:
		h.logger.Debug(msg, args...)
	}
}

func (h *hclogAdapter) Trace(msg string, args ...interface{}) { h.logger.Debug(msg, args...) }
func (h *hclogAdapter) Debug(msg string, args ...interface{}) { h.logger.Debug(msg, args...) }
func (h *hclogAdapter) Info(msg string, args ...interface{})  { h.logger.Info(msg, args...) }
func (h *hclogAdapter) Warn(msg string, args ...interface{})  { h.logger.Warn(msg, args...) }
func (h *hclogAdapter) Error(msg string, args ...interface{}) { h.logger.Error(msg, args...) }

func (h *hclogAdapter) IsTrace() bool { return false }
func (h *hclogAdapter) IsDebug() bool { return true }
func (h *hclogAdapter) IsInfo() bool  { return true }
func (h *hclogAdapter) IsWarn() bool  { return true }
func (h *hclogAdapter) IsError() bool { return true }

func (h *hclogAdapter) ImpliedArgs() []interface{} { return nil }

func (h *hclogAdapter) With(args ...interface{}) hclog.Logger {
	return &hclogAdapter{logger: h.logger.With(args...), name: h.name}
}

func (h *hclogAdapter) Name() string { return h.name }

func (h *hclogAdapter) Named(name string) hclog.Logger {
	return &hclogAdapter{logger: h.logger, name: h.name + "." + name}
}

func (h *hclogAdapter) ResetNamed(name string) hclog.Logger {
	return &hclogAdapter{logger: h.logger, name: name}
}

func (h *hclogAdapter) SetLevel(hclog.Level) {}

func (h *hclogAdapter) GetLevel() hclog.Level { return hclog.Debug }

func (h *hclogAdapter) StandardLogger(*hclog.StandardLoggerOptions) *log.Logger {
	return slog.NewLogLogger(h.logger.Handler(), slog.LevelInfo)
}

func (h *hclogAdapter) StandardWriter(*hclog.StandardLoggerOptions) io.Writer {
	return os.Stderr
}
