package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDailyScore(t *testing.T) {
	score := NewDailyScore(day.Add(15*time.Hour + 4*time.Minute))

	assert.Equal(t, day, score.Day)
	assert.Zero(t, score.FocusScore)
	assert.Nil(t, score.PeakHour)
}

func TestDailyScore_Apply(t *testing.T) {
	now := day.Add(23 * time.Hour)

	t.Run("productive day", func(t *testing.T) {
		score := NewDailyScore(day)
		b := Breakdown{ProductiveSeconds: 3000, NeutralSeconds: 1000, DistractingSeconds: 1000}
		b.HourlyProductive[14] = 3000

		gained := score.Apply(b, DefaultProductiveThreshold, now)

		assert.InDelta(t, 70.0, score.FocusScore, 1e-9)
		assert.True(t, score.IsProductive)
		require.NotNil(t, score.PeakHour)
		assert.Equal(t, 14, *score.PeakHour)
		assert.Equal(t, int64(50+50), gained)
		assert.Equal(t, int64(100), score.XPEarned)
		assert.Equal(t, now, score.UpdatedAt)
	})

	t.Run("below threshold", func(t *testing.T) {
		score := NewDailyScore(day)
		gained := score.Apply(Breakdown{ProductiveSeconds: 600, DistractingSeconds: 1800}, DefaultProductiveThreshold, now)

		assert.False(t, score.IsProductive)
		assert.Equal(t, int64(10), gained)
	})

	t.Run("empty day is not productive", func(t *testing.T) {
		score := NewDailyScore(day)
		gained := score.Apply(Breakdown{}, 0, now)

		assert.False(t, score.IsProductive)
		assert.Zero(t, gained)
		assert.Zero(t, score.TotalSeconds())
	})

	t.Run("xp never decreases", func(t *testing.T) {
		score := NewDailyScore(day)
		score.Apply(Breakdown{ProductiveSeconds: 3600}, DefaultProductiveThreshold, now)
		require.Equal(t, int64(110), score.XPEarned)

		gained := score.Apply(Breakdown{ProductiveSeconds: 600, DistractingSeconds: 3000}, DefaultProductiveThreshold, now)

		assert.Zero(t, gained)
		assert.Equal(t, int64(110), score.XPEarned)
		assert.False(t, score.IsProductive)
	})

	t.Run("incremental gains", func(t *testing.T) {
		score := NewDailyScore(day)
		first := score.Apply(Breakdown{ProductiveSeconds: 120}, DefaultProductiveThreshold, now)
		second := score.Apply(Breakdown{ProductiveSeconds: 300}, DefaultProductiveThreshold, now)

		assert.Equal(t, int64(52), first)
		assert.Equal(t, int64(3), second)
		assert.Equal(t, int64(55), score.XPEarned)
	})
}

func TestDailyXP(t *testing.T) {
	assert.Equal(t, int64(0), DailyXP(59, false))
	assert.Equal(t, int64(1), DailyXP(60, false))
	assert.Equal(t, int64(52), DailyXP(150, true))
	assert.Equal(t, int64(0), DailyXP(-100, false))
}

func TestWeekStart(t *testing.T) {
	// 2026-03-02 is a Monday.
	assert.Equal(t, day, WeekStart(day))
	assert.Equal(t, day, WeekStart(day.AddDate(0, 0, 6).Add(22*time.Hour)))
	assert.Equal(t, day.AddDate(0, 0, 7), WeekStart(day.AddDate(0, 0, 7)))
}

func TestWeekScore(t *testing.T) {
	assert.Zero(t, WeekScore(nil))
	assert.Equal(t, 75.0, WeekScore([]*DailyScore{{FocusScore: 70}, {FocusScore: 80}}))
}
