// Package eventbus delivers outbox messages to the configured broker or to
// in-process consumers.
package eventbus

import "context"

// Publisher sends one serialized domain event. The routing key doubles as
// the event type, so brokers can route on it without decoding the payload.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}
