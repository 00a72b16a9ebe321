package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/kafeel/internal/insights/domain"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/database/dbtest"
)

func setupRepo(t *testing.T) *SQLDailyScoreRepository {
	t.Helper()
	return NewSQLDailyScoreRepository(dbtest.NewSQLite(t), time.UTC)
}

func TestSQLDailyScoreRepository_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	missing, err := repo.FindByDay(ctx, day)
	require.NoError(t, err)
	assert.Nil(t, missing)

	created, err := repo.GetOrCreate(ctx, day.Add(13*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, day, created.Day)
	assert.Zero(t, created.FocusScore)
	assert.Nil(t, created.PeakHour)

	created.XPEarned = 10
	require.NoError(t, repo.Save(ctx, created))

	again, err := repo.GetOrCreate(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, int64(10), again.XPEarned)
}

func TestSQLDailyScoreRepository_SaveAndRange(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	for i, score := range []float64{70, 40, 92} {
		s := domain.NewDailyScore(monday.AddDate(0, 0, i))
		b := domain.Breakdown{ProductiveSeconds: score * 10, DistractingSeconds: (100 - score) * 10}
		b.HourlyProductive[10] = score * 10
		s.Apply(b, domain.DefaultProductiveThreshold, monday.AddDate(0, 0, i).Add(23*time.Hour))
		require.NoError(t, repo.Save(ctx, s))
	}

	all, err := repo.FindRange(ctx, monday, monday.AddDate(0, 0, 6))
	require.NoError(t, err)
	require.Len(t, all, 3)

	assert.InDelta(t, 70.0, all[0].FocusScore, 1e-9)
	assert.True(t, all[0].IsProductive)
	assert.False(t, all[1].IsProductive)
	require.NotNil(t, all[2].PeakHour)
	assert.Equal(t, 10, *all[2].PeakHour)
	assert.Equal(t, monday.AddDate(0, 0, 2), all[2].Day)

	tail, err := repo.FindRange(ctx, monday.AddDate(0, 0, 1), monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.InDelta(t, 40.0, tail[0].FocusScore, 1e-9)
}

func TestSQLDailyScoreRepository_FirstDay(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	first, err := repo.FirstDay(ctx)
	require.NoError(t, err)
	assert.Nil(t, first)

	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	_, err = repo.GetOrCreate(ctx, day)
	require.NoError(t, err)
	_, err = repo.GetOrCreate(ctx, day.AddDate(0, 0, -2))
	require.NoError(t, err)

	first, err = repo.FirstDay(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, day.AddDate(0, 0, -2), *first)
}
