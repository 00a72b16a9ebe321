package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/database/dbtest"
	"github.com/felixgeelhaar/kafeel/internal/tracking/domain"
)

func TestSQLSessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLSessionRepository(dbtest.NewSQLite(t))

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	mk := func(app string, start time.Time, d time.Duration) *domain.ActivitySession {
		s := domain.Open(domain.App{ID: app, DisplayName: app}, start).Close(start.Add(d))
		return &s
	}

	before := mk("late.night", day.Add(-30*time.Minute), time.Hour)
	inside := mk("com.apple.dt.Xcode", day.Add(9*time.Hour), 45*time.Minute)
	inside.WindowTitle = "Package.swift"
	after := mk("next.day", day.AddDate(0, 0, 1).Add(time.Hour), time.Hour)

	for _, s := range []*domain.ActivitySession{after, inside, before} {
		require.NoError(t, repo.Save(ctx, s))
	}

	t.Run("finds overlapping ordered by start", func(t *testing.T) {
		got, err := repo.FindOverlapping(ctx, day, day.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.Equal(t, before.ID, got[0].ID)
		assert.Equal(t, inside.ID, got[1].ID)
		assert.Equal(t, "Package.swift", got[1].WindowTitle)
		assert.True(t, inside.Start.Equal(got[1].Start))
		assert.True(t, inside.End.Equal(got[1].End))
	})

	t.Run("empty range", func(t *testing.T) {
		got, err := repo.FindOverlapping(ctx, day.AddDate(0, 0, 5), day.AddDate(0, 0, 6))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("save is idempotent per id", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, inside))
		got, err := repo.FindOverlapping(ctx, day, day.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

func TestSQLCategoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLCategoryRepository(dbtest.NewSQLite(t))

	t.Run("missing mapping returns nil", func(t *testing.T) {
		m, err := repo.FindByAppID(ctx, "unknown")
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("seed does not override", func(t *testing.T) {
		custom, err := domain.NewCategoryMapping("com.tinyspeck.slackmacgap", domain.CategoryNeutral, true)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, custom))

		seed, err := domain.NewCategoryMapping("com.tinyspeck.slackmacgap", domain.CategoryDistracting, false)
		require.NoError(t, err)
		stored, err := repo.SaveIfAbsent(ctx, seed)
		require.NoError(t, err)
		assert.False(t, stored)

		got, err := repo.FindByAppID(ctx, "com.tinyspeck.slackmacgap")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, domain.CategoryNeutral, got.Category)
		assert.True(t, got.IsCustom)
	})

	t.Run("seed stores new app", func(t *testing.T) {
		seed, err := domain.NewCategoryMapping("com.apple.Terminal", domain.CategoryProductive, false)
		require.NoError(t, err)
		stored, err := repo.SaveIfAbsent(ctx, seed)
		require.NoError(t, err)
		assert.True(t, stored)
	})

	t.Run("save replaces", func(t *testing.T) {
		m, err := domain.NewCategoryMapping("com.apple.Terminal", domain.CategoryDistracting, true)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, m))

		got, err := repo.FindByAppID(ctx, "com.apple.Terminal")
		require.NoError(t, err)
		assert.Equal(t, domain.CategoryDistracting, got.Category)
	})

	t.Run("list is ordered", func(t *testing.T) {
		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "com.apple.Terminal", all[0].AppID)
		assert.Equal(t, "com.tinyspeck.slackmacgap", all[1].AppID)
	})
}
