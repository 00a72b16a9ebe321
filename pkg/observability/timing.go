package observability

import (
	"log/slog"
	"time"
)

// Timer measures one operation and reports it to a logger and metrics.
type Timer struct {
	operation string
	start     time.Time
	logger    *slog.Logger
	metrics   Metrics
}

// StartTimer starts timing operation.
func StartTimer(operation string) *Timer {
	return &Timer{operation: operation, start: time.Now()}
}

// WithLogger logs the outcome at debug level, or error level on failure.
func (t *Timer) WithLogger(logger *slog.Logger) *Timer {
	t.logger = logger
	return t
}

func (t *Timer) WithMetrics(metrics Metrics) *Timer {
	t.metrics = metrics
	return t
}

// Stop records a successful run.
func (t *Timer) Stop() time.Duration {
	return t.StopWithError(nil)
}

// StopWithError records the run and counts it as an error when err != nil.
func (t *Timer) StopWithError(err error) time.Duration {
	duration := time.Since(t.start)

	if t.logger != nil {
		if err != nil {
			t.logger.Error("operation failed",
				OperationKey, t.operation,
				DurationKey, duration.Milliseconds(),
				ErrorKey, err,
			)
		} else {
			t.logger.Debug("operation completed",
				OperationKey, t.operation,
				DurationKey, duration.Milliseconds(),
			)
		}
	}

	if t.metrics != nil {
		op := T(OperationKey, t.operation)
		t.metrics.Timing(MetricOperationDuration, duration, op)
		t.metrics.Counter(MetricOperationTotal, 1, op)
		if err != nil {
			t.metrics.Counter(MetricOperationErrors, 1, op)
		}
	}

	return duration
}

// TimeOperation times fn and records its outcome.
func TimeOperation(logger *slog.Logger, metrics Metrics, operation string, fn func() error) error {
	timer := StartTimer(operation).WithLogger(logger).WithMetrics(metrics)
	err := fn()
	timer.StopWithError(err)
	return err
}
