package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Wildcard registers a consumer for every routing key.
const Wildcard = "*"

// ConsumerRegistry tracks consumers by routing key and dispatches to them.
type ConsumerRegistry struct {
	consumers map[string][]EventConsumer
	mu        sync.RWMutex
	logger    *slog.Logger
}

// NewConsumerRegistry creates an empty registry.
func NewConsumerRegistry(logger *slog.Logger) *ConsumerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsumerRegistry{
		consumers: make(map[string][]EventConsumer),
		logger:    logger,
	}
}

// Register adds a consumer for each routing key it declares.
func (r *ConsumerRegistry) Register(consumer EventConsumer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range consumer.EventTypes() {
		r.consumers[key] = append(r.consumers[key], consumer)
		r.logger.Debug("registered consumer", "routing_key", key)
	}
}

// Consumers returns the consumers for key, including wildcard consumers.
func (r *ConsumerRegistry) Consumers(key string) []EventConsumer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]EventConsumer, 0, len(r.consumers[key])+len(r.consumers[Wildcard]))
	out = append(out, r.consumers[key]...)
	if key != Wildcard {
		out = append(out, r.consumers[Wildcard]...)
	}
	return out
}

// Dispatch delivers event to every matching consumer. A failing consumer
// does not stop delivery to the others; all failures are joined.
func (r *ConsumerRegistry) Dispatch(ctx context.Context, event *ConsumedEvent) error {
	consumers := r.Consumers(event.RoutingKey)
	if len(consumers) == 0 {
		r.logger.Debug("no consumers for event", "routing_key", event.RoutingKey)
		return nil
	}

	var errs []error
	for _, consumer := range consumers {
		if err := consumer.Handle(ctx, event); err != nil {
			r.logger.Error("consumer failed",
				"routing_key", event.RoutingKey,
				"event_id", event.EventID,
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ConsumerCount returns the number of registrations.
func (r *ConsumerRegistry) ConsumerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, consumers := range r.consumers {
		count += len(consumers)
	}
	return count
}
