package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOpen(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	open := Open(App{ID: "com.apple.Terminal"}, at)

	assert.NotEqual(t, uuid.Nil, open.ID)
	assert.Equal(t, "com.apple.Terminal", open.App.DisplayName)
	assert.Equal(t, at, open.Start)
}

func TestOpenSession_Close(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	open := Open(App{ID: "a", DisplayName: "A", WindowTitle: "main.go"}, start)

	t.Run("keeps identity and bounds", func(t *testing.T) {
		s := open.Close(start.Add(90 * time.Second))

		assert.Equal(t, open.ID, s.ID)
		assert.Equal(t, "main.go", s.WindowTitle)
		assert.Equal(t, 90*time.Second, s.Duration())
	})

	t.Run("clamps end before start", func(t *testing.T) {
		s := open.Close(start.Add(-time.Minute))

		assert.Equal(t, start, s.End)
		assert.Zero(t, s.Duration())
	})
}

func TestOpenSession_Elapsed(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	open := Open(App{ID: "a"}, start)

	assert.Equal(t, time.Minute, open.Elapsed(start.Add(time.Minute)))
	assert.Zero(t, open.Elapsed(start.Add(-time.Minute)))
}

func TestActivitySession_Overlap(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	next := day.AddDate(0, 0, 1)

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  time.Duration
	}{
		{"inside", day.Add(time.Hour), day.Add(2 * time.Hour), time.Hour},
		{"starts before", day.Add(-time.Hour), day.Add(30 * time.Minute), 30 * time.Minute},
		{"ends after", next.Add(-10 * time.Minute), next.Add(time.Hour), 10 * time.Minute},
		{"outside", next.Add(time.Hour), next.Add(2 * time.Hour), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ActivitySession{Start: tt.start, End: tt.end}
			assert.Equal(t, tt.want, s.Overlap(day, next))
		})
	}
}

func TestActivitySession_MeetsMinimum(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	short := ActivitySession{Start: start, End: start.Add(1500 * time.Millisecond)}
	exact := ActivitySession{Start: start, End: start.Add(2 * time.Second)}

	assert.False(t, short.MeetsMinimum(2*time.Second))
	assert.True(t, exact.MeetsMinimum(2*time.Second))
}

func TestNewSessionRecorded(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := Open(App{ID: "a", DisplayName: "A"}, start).Close(start.Add(time.Minute))

	event := NewSessionRecorded(s, CategoryProductive)

	assert.Equal(t, RoutingKeySessionRecorded, event.RoutingKey())
	assert.Equal(t, AggregateType, event.AggregateType())
	assert.Equal(t, s.End, event.OccurredAt())
	assert.Equal(t, 60.0, event.DurationSeconds)
}
