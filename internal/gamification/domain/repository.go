package domain

import "context"

// StreakRepository persists the single streak.
type StreakRepository interface {
	// GetOrCreate returns the streak, creating an empty one if needed.
	GetOrCreate(ctx context.Context) (*Streak, error)
	Save(ctx context.Context, streak *Streak) error
}

// ProfileRepository persists the single user profile.
type ProfileRepository interface {
	// GetOrCreate returns the profile, creating an empty one if needed.
	GetOrCreate(ctx context.Context) (*UserProfile, error)
	Save(ctx context.Context, profile *UserProfile) error
}

// AchievementRepository persists achievement unlock state.
type AchievementRepository interface {
	// Seed creates a locked row for every achievement missing one.
	Seed(ctx context.Context, achievements []*Achievement) error

	// FindAll returns every achievement ordered by type.
	FindAll(ctx context.Context) ([]*Achievement, error)

	Save(ctx context.Context, achievement *Achievement) error
}

// RecordRepository persists personal records.
type RecordRepository interface {
	// GetOrCreate returns the record of a category, creating an empty one
	// if needed.
	GetOrCreate(ctx context.Context, category RecordCategory) (*PersonalRecord, error)

	// FindAll returns every stored record ordered by category.
	FindAll(ctx context.Context) ([]*PersonalRecord, error)

	Save(ctx context.Context, record *PersonalRecord) error
}
