package domain

import (
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/felixgeelhaar/kafeel/internal/shared/domain"
)

const (
	// AggregateType is the aggregate name used for tracking events.
	AggregateType = "activity_session"

	RoutingKeySessionRecorded = "tracking.session.recorded"
)

// SessionRecorded is published when a finalized session has been stored.
type SessionRecorded struct {
	sharedDomain.BaseEvent
	SessionID       uuid.UUID `json:"session_id"`
	AppID           string    `json:"app_id"`
	DisplayName     string    `json:"display_name"`
	Category        Category  `json:"category"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationSeconds float64   `json:"duration_seconds"`
}

// NewSessionRecorded creates the event for a stored session.
func NewSessionRecorded(s ActivitySession, category Category) SessionRecorded {
	return SessionRecorded{
		BaseEvent:       sharedDomain.NewBaseEvent(AggregateType, RoutingKeySessionRecorded, s.End),
		SessionID:       s.ID,
		AppID:           s.AppID,
		DisplayName:     s.DisplayName,
		Category:        category,
		Start:           s.Start,
		End:             s.End,
		DurationSeconds: s.Duration().Seconds(),
	}
}
