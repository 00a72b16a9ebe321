// Package outbox stores domain events in the same transaction as the state
// change that produced them and relays them to the broker afterwards.
package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/kafeel/internal/shared/domain"
)

// Message is one outbox row.
type Message struct {
	EventID          uuid.UUID
	AggregateType    string
	RoutingKey       string
	Payload          json.RawMessage
	CreatedAt        time.Time
	PublishedAt      *time.Time
	NextRetryAt      *time.Time
	RetryCount       int
	LastError        *string
	DeadLetteredAt   *time.Time
	DeadLetterReason *string
}

// NewMessage serializes event into an unpublished message.
func NewMessage(event domain.DomainEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:       event.EventID(),
		AggregateType: event.AggregateType(),
		RoutingKey:    event.RoutingKey(),
		Payload:       payload,
		CreatedAt:     event.OccurredAt(),
	}, nil
}

// IsPublished reports whether the message reached the broker.
func (m *Message) IsPublished() bool {
	return m.PublishedAt != nil
}
