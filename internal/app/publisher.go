package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/kafeel/pkg/config"
	"github.com/felixgeelhaar/kafeel/pkg/observability"
)

// NewEventPublisher creates the publisher the outbox processor delivers to.
// Broker publishers are wrapped in a circuit breaker. In development an
// unreachable broker falls back to the in-process bus.
func NewEventPublisher(cfg *config.Config, logger *slog.Logger, metrics observability.Metrics) (eventbus.Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	metrics = observability.OrNoop(metrics)

	var (
		broker eventbus.Publisher
		err    error
	)
	switch cfg.EventBroker {
	case config.BrokerRabbitMQ:
		broker, err = eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
	case config.BrokerKafka:
		broker, err = eventbus.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	default:
		return NewInProcessPublisher(logger, metrics), nil
	}
	if err != nil {
		if cfg.IsDevelopment() {
			logger.Warn("event broker not available, delivering events in process",
				"broker", cfg.EventBroker,
				"error", err,
			)
			return NewInProcessPublisher(logger, metrics), nil
		}
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.EventBroker, err)
	}

	logger.Info("event broker connected", "broker", cfg.EventBroker)
	return eventbus.NewBreakerPublisher(cfg.EventBroker, broker, eventbus.DefaultBreakerConfig(), logger, func(state string) {
		open := 0.0
		if state == "open" {
			open = 1
		}
		metrics.Gauge(observability.MetricBreakerOpen, open, observability.T("broker", cfg.EventBroker))
	}), nil
}

// NewInProcessPublisher creates a bus that logs and counts every event.
func NewInProcessPublisher(logger *slog.Logger, metrics observability.Metrics) *eventbus.InProcessBus {
	metrics = observability.OrNoop(metrics)
	eventsLogger := observability.Component(logger, "events")

	bus := eventbus.NewInProcessBus(logger)
	bus.RegisterConsumer(eventbus.ConsumerFunc{
		Keys: []string{eventbus.Wildcard},
		Fn: func(_ context.Context, event *eventbus.ConsumedEvent) error {
			eventsLogger.Info("event",
				"routing_key", event.RoutingKey,
				"event_id", event.EventID,
				"occurred_at", event.OccurredAt,
			)
			metrics.Counter(observability.MetricEventsConsumed, 1, observability.T("routing_key", event.RoutingKey))
			return nil
		},
	})
	return bus
}
