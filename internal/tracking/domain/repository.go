package domain

import (
	"context"
	"time"
)

// SessionRepository defines the interface for activity session persistence.
type SessionRepository interface {
	// Save persists a finalized session.
	Save(ctx context.Context, session *ActivitySession) error

	// FindOverlapping returns sessions intersecting [from, to), ordered by start.
	FindOverlapping(ctx context.Context, from, to time.Time) ([]*ActivitySession, error)
}

// CategoryRepository defines the interface for category mapping persistence.
type CategoryRepository interface {
	// FindByAppID returns the mapping for an app, or nil if none exists.
	FindByAppID(ctx context.Context, appID string) (*CategoryMapping, error)

	// Save creates or replaces a mapping.
	Save(ctx context.Context, mapping *CategoryMapping) error

	// SaveIfAbsent stores a mapping only when the app has none yet and
	// reports whether it was stored.
	SaveIfAbsent(ctx context.Context, mapping *CategoryMapping) (bool, error)

	// List returns all mappings ordered by app id.
	List(ctx context.Context) ([]*CategoryMapping, error)
}

// StatusStore keeps the latest live status.
type StatusStore interface {
	Publish(ctx context.Context, status LiveStatus) error

	// Latest returns the last published status, or nil if none exists.
	Latest(ctx context.Context) (*LiveStatus, error)
}
