package domain

import (
	"context"
	"time"
)

// DailyScoreRepository defines the interface for daily score persistence.
type DailyScoreRepository interface {
	// FindByDay returns the score for a day, or nil if the day was never scored.
	FindByDay(ctx context.Context, day time.Time) (*DailyScore, error)

	// GetOrCreate returns the score for a day, creating an empty one if needed.
	GetOrCreate(ctx context.Context, day time.Time) (*DailyScore, error)

	// Save updates a score.
	Save(ctx context.Context, score *DailyScore) error

	// FindRange returns the scored days from first through last, inclusive,
	// ordered by day.
	FindRange(ctx context.Context, first, last time.Time) ([]*DailyScore, error)

	// FirstDay returns the earliest scored day, or nil if none exists.
	FirstDay(ctx context.Context) (*time.Time, error)
}
