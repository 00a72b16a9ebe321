// Package domain holds the shared kernel used by every bounded context.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents something that happened in the domain.
type DomainEvent interface {
	EventID() uuid.UUID
	AggregateType() string
	RoutingKey() string
	OccurredAt() time.Time
}

// BaseEvent provides common event functionality. Its fields are exported so
// that concrete events serialize with their envelope.
type BaseEvent struct {
	ID        uuid.UUID `json:"event_id"`
	Aggregate string    `json:"aggregate_type"`
	Key       string    `json:"routing_key"`
	At        time.Time `json:"occurred_at"`
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(aggregateType, routingKey string, at time.Time) BaseEvent {
	if at.IsZero() {
		at = time.Now()
	}
	return BaseEvent{
		ID:        uuid.New(),
		Aggregate: aggregateType,
		Key:       routingKey,
		At:        at.UTC(),
	}
}

func (e BaseEvent) EventID() uuid.UUID      { return e.ID }
func (e BaseEvent) AggregateType() string   { return e.Aggregate }
func (e BaseEvent) RoutingKey() string      { return e.Key }
func (e BaseEvent) OccurredAt() time.Time   { return e.At }
