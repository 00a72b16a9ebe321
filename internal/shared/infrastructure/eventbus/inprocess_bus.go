package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// InProcessBus delivers published events synchronously to registered
// consumers. The worker uses it when no broker is configured.
type InProcessBus struct {
	registry *ConsumerRegistry
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewInProcessBus creates an empty in-process bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{
		registry: NewConsumerRegistry(logger),
		logger:   logger,
	}
}

// RegisterConsumer registers an event consumer.
func (b *InProcessBus) RegisterConsumer(consumer EventConsumer) {
	b.registry.Register(consumer)
}

// Publish decodes the envelope and dispatches it. Undecodable payloads are
// logged and skipped so one bad row cannot block the outbox.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	event, err := DecodeEvent(routingKey, payload)
	if err != nil {
		b.logger.Error("failed to decode event payload",
			"routing_key", routingKey,
			"error", err,
		)
		return nil
	}

	start := time.Now()
	if err := b.registry.Dispatch(ctx, event); err != nil {
		return err
	}

	b.logger.Debug("event dispatched",
		"routing_key", routingKey,
		"event_id", event.EventID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Close is a no-op.
func (b *InProcessBus) Close() error {
	return nil
}
