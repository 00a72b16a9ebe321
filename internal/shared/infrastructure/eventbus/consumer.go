package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventConsumer handles the routing keys it declares.
type EventConsumer interface {
	// EventTypes returns the routing keys this consumer handles, for example
	// "gamification.achievement.unlocked".
	EventTypes() []string

	Handle(ctx context.Context, event *ConsumedEvent) error
}

// ConsumedEvent is the envelope every published event carries. Payload
// holds the complete JSON document so consumers can decode event-specific
// fields.
type ConsumedEvent struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType string          `json:"aggregate_type"`
	RoutingKey    string          `json:"routing_key"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"-"`
}

// DecodeEvent reads the envelope fields from a published payload.
func DecodeEvent(routingKey string, payload []byte) (*ConsumedEvent, error) {
	event := &ConsumedEvent{}
	if err := json.Unmarshal(payload, event); err != nil {
		return nil, err
	}
	if event.RoutingKey == "" {
		event.RoutingKey = routingKey
	}
	event.Payload = append(json.RawMessage(nil), payload...)
	return event, nil
}

// ConsumerFunc adapts a function to EventConsumer.
type ConsumerFunc struct {
	Keys []string
	Fn   func(ctx context.Context, event *ConsumedEvent) error
}

func (c ConsumerFunc) EventTypes() []string { return c.Keys }

func (c ConsumerFunc) Handle(ctx context.Context, event *ConsumedEvent) error {
	return c.Fn(ctx, event)
}
