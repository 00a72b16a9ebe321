package eventbus

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes the circuit breaker around a publisher.
type BreakerConfig struct {
	// MaxRequests is the number of trial publishes allowed while half-open.
	MaxRequests uint32
	// Interval resets failure counts while closed. Zero never resets.
	Interval time.Duration
	// Timeout is how long the breaker stays open.
	Timeout time.Duration
	// FailureThreshold trips the breaker after this many consecutive failures.
	FailureThreshold uint32
}

// DefaultBreakerConfig returns the settings the worker uses.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerPublisher fails fast with gobreaker.ErrOpenState while the broker
// is unhealthy. The outbox then schedules a retry instead of waiting on a
// dead connection for every message.
type BreakerPublisher struct {
	next    Publisher
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerPublisher wraps next. onChange, if non-nil, observes state
// transitions.
func NewBreakerPublisher(name string, next Publisher, cfg BreakerConfig, logger *slog.Logger, onChange func(state string)) *BreakerPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("publisher circuit breaker state changed",
				"publisher", name,
				"from", from.String(),
				"to", to.String(),
			)
			if onChange != nil {
				onChange(to.String())
			}
		},
	}

	return &BreakerPublisher{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (p *BreakerPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.next.Publish(ctx, routingKey, payload)
	})
	return err
}

// State reports the current breaker state.
func (p *BreakerPublisher) State() string {
	return p.breaker.State().String()
}

func (p *BreakerPublisher) Close() error {
	return p.next.Close()
}
