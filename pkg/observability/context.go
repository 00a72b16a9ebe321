package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	correlationIDCtxKey contextKey = "correlation_id"
	requestIDCtxKey     contextKey = "request_id"
)

// Attribute keys shared by logs and metrics.
const (
	CorrelationIDKey = "correlation_id"
	RequestIDKey     = "request_id"
	ComponentKey     = "component"
	OperationKey     = "operation"
	DurationKey      = "duration_ms"
	ErrorKey         = "error"
)

// WithCorrelationID tags ctx with a correlation id. An empty id generates one.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, correlationIDCtxKey, id)
}

// CorrelationIDFromContext returns the correlation id, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationIDCtxKey).(string)
	return id
}

// WithRequestID tags ctx with a request id. An empty id generates one.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, requestIDCtxKey, id)
}

// RequestIDFromContext returns the request id, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDCtxKey).(string)
	return id
}
