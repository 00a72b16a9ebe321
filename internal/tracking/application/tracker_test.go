package application

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/kafeel/internal/tracking/domain"
	"github.com/felixgeelhaar/kafeel/pkg/observability"
)

// recorder captures the calls the tracker makes, in order.
type recorder struct {
	mu       sync.Mutex
	sessions []domain.ActivitySession
	days     []time.Time
	calls    []string
	statuses []domain.LiveStatus
	failNext error
}

func (r *recorder) RecordSession(_ context.Context, s domain.ActivitySession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "session:"+s.AppID)
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	r.sessions = append(r.sessions, s)
	return nil
}

func (r *recorder) CloseDay(_ context.Context, day time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "day:"+day.Format(time.DateOnly))
	r.days = append(r.days, day)
	return nil
}

func (r *recorder) Publish(_ context.Context, s domain.LiveStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
	return nil
}

func (r *recorder) snapshot() []domain.ActivitySession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ActivitySession(nil), r.sessions...)
}

type staticLookup map[string]domain.Category

func (l staticLookup) Resolve(_ context.Context, appID string) (domain.Resolution, error) {
	if c, ok := l[appID]; ok {
		return domain.Resolution{AppID: appID, Category: c, Source: domain.ResolvedMapping}, nil
	}
	return domain.FallbackResolution(appID), nil
}

type fixedSampler struct{ app domain.App }

func (s fixedSampler) Foreground(context.Context) (domain.App, bool, error) {
	return s.app, true, nil
}

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func at(d time.Duration) time.Time { return base.Add(d) }

func focus(app string, d time.Duration) domain.SystemEvent {
	return domain.ForegroundChanged{App: domain.App{ID: app, DisplayName: app}, At: at(d)}
}

func setupTracker(t *testing.T) (*Tracker, *recorder, *observability.InMemoryMetrics) {
	t.Helper()
	rec := &recorder{}
	metrics := observability.NewInMemoryMetrics()
	cfg := DefaultTrackerConfig()
	cfg.Location = time.UTC
	tracker := NewTracker(cfg, rec, nil, metrics).
		WithDayCloser(rec).
		WithStatus(rec).
		WithCategories(staticLookup{"editor": domain.CategoryProductive})
	tracker.now = func() time.Time { return at(3 * time.Hour) }
	return tracker, rec, metrics
}

func TestTracker_ForegroundChange(t *testing.T) {
	ctx := context.Background()
	tracker, rec, metrics := setupTracker(t)

	require.NoError(t, tracker.Handle(ctx, focus("editor", 0)))
	require.NoError(t, tracker.Handle(ctx, focus("browser", 10*time.Minute)))

	sessions := rec.snapshot()
	require.Len(t, sessions, 1)
	assert.Equal(t, "editor", sessions[0].AppID)
	assert.Equal(t, 10*time.Minute, sessions[0].Duration())

	status := tracker.Status()
	assert.Equal(t, domain.TrackerActive, status.State)
	assert.Equal(t, "browser", status.AppID)
	assert.Equal(t, domain.CategoryNeutral, status.Category)

	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricSessionsRecorded, observability.T("category", "productive")))
}

func TestTracker_SameAppKeepsSession(t *testing.T) {
	ctx := context.Background()
	tracker, rec, _ := setupTracker(t)

	require.NoError(t, tracker.Handle(ctx, focus("editor", 0)))
	require.NoError(t, tracker.Handle(ctx, focus("editor", time.Minute)))
	require.NoError(t, tracker.Handle(ctx, domain.ScreenLocked{At: at(2 * time.Minute)}))

	sessions := rec.snapshot()
	require.Len(t, sessions, 1)
	assert.Equal(t, 2*time.Minute, sessions[0].Duration())
}

func TestTracker_DropsShortSessions(t *testing.T) {
	ctx := context.Background()
	tracker, rec, metrics := setupTracker(t)

	require.NoError(t, tracker.Handle(ctx, focus("X", 0)))
	require.NoError(t, tracker.Handle(ctx, focus("editor", 1500*time.Millisecond)))

	assert.Empty(t, rec.snapshot())
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricSessionsDropped))
}

func TestTracker_LockAndUnlock(t *testing.T) {
	ctx := context.Background()

	t.Run("lock finalizes and idles", func(t *testing.T) {
		tracker, rec, _ := setupTracker(t)

		require.NoError(t, tracker.Handle(ctx, focus("editor", 0)))
		require.NoError(t, tracker.Handle(ctx, domain.ScreenLocked{At: at(time.Hour)}))

		require.Len(t, rec.snapshot(), 1)
		assert.Equal(t, domain.TrackerIdle, tracker.Status().State)
	})

	t.Run("unlock reopens last app", func(t *testing.T) {
		tracker, rec, _ := setupTracker(t)

		require.NoError(t, tracker.Handle(ctx, focus("editor", 0)))
		require.NoError(t, tracker.Handle(ctx, domain.ScreenLocked{At: at(time.Hour)}))
		require.NoError(t, tracker.Handle(ctx, domain.ScreenUnlocked{At: at(2 * time.Hour)}))
		require.NoError(t, tracker.Handle(ctx, domain.ScreenLocked{At: at(2*time.Hour + time.Minute)}))

		sessions := rec.snapshot()
		require.Len(t, sessions, 2)
		assert.Equal(t, "editor", sessions[1].AppID)
		assert.Equal(t, at(2*time.Hour), sessions[1].Start)
	})

	t.Run("unlock samples foreground", func(t *testing.T) {
		tracker, _, _ := setupTracker(t)
		tracker.WithSampler(fixedSampler{app: domain.App{ID: "terminal"}})

		require.NoError(t, tracker.Handle(ctx, domain.ScreenUnlocked{At: at(0)}))

		assert.Equal(t, "terminal", tracker.Status().AppID)
	})

	t.Run("unlock without history stays idle", func(t *testing.T) {
		tracker, _, _ := setupTracker(t)

		require.NoError(t, tracker.Handle(ctx, domain.ScreenUnlocked{At: at(0)}))

		assert.Equal(t, domain.TrackerIdle, tracker.Status().State)
	})
}

func TestTracker_IdleSurrogate(t *testing.T) {
	ctx := context.Background()
	tracker, rec, _ := setupTracker(t)

	require.NoError(t, tracker.Handle(ctx, focus("editor", 0)))
	require.NoError(t, tracker.Handle(ctx, focus("com.apple.loginwindow", time.Minute)))

	require.Len(t, rec.snapshot(), 1)
	assert.Equal(t, domain.TrackerIdle, tracker.Status().State)

	require.NoError(t, tracker.Handle(ctx, focus("com.apple.loginwindow", 2*time.Minute)))
	assert.Len(t, rec.snapshot(), 1)
}

func TestTracker_PersistenceFailure(t *testing.T) {
	ctx := context.Background()
	tracker, rec, metrics := setupTracker(t)

	var reported []error
	tracker.OnError(func(err error) { reported = append(reported, err) })

	storeErr := errors.New("database is locked")
	rec.failNext = storeErr

	require.NoError(t, tracker.Handle(ctx, focus("editor", 0)))
	err := tracker.Handle(ctx, focus("browser", time.Minute))

	assert.ErrorIs(t, err, storeErr)
	require.Len(t, reported, 1)
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricPersistenceErrors, observability.T("stage", "session")))

	// tracking continues with the new session
	status := tracker.Status()
	assert.Equal(t, "browser", status.AppID)
	require.True(t, status.SaveFailing())
	assert.Equal(t, "database is locked", status.LastError)
	assert.Equal(t, at(time.Minute), *status.SaveFailedAt)

	rec.mu.Lock()
	published := rec.statuses[len(rec.statuses)-1]
	rec.mu.Unlock()
	assert.True(t, published.SaveFailing())

	// the next successful save clears the failure
	require.NoError(t, tracker.Handle(ctx, domain.ScreenLocked{At: at(2 * time.Minute)}))
	assert.Len(t, rec.snapshot(), 1)
	assert.False(t, tracker.Status().SaveFailing())
	assert.Empty(t, tracker.Status().LastError)
}

func TestTracker_MidnightSplit(t *testing.T) {
	ctx := context.Background()
	tracker, rec, _ := setupTracker(t)

	midnight := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	require.NoError(t, tracker.Handle(ctx, domain.ForegroundChanged{
		App: domain.App{ID: "editor"},
		At:  midnight.Add(-time.Minute),
	}))
	require.NoError(t, tracker.Handle(ctx, domain.ScreenLocked{At: midnight.Add(time.Minute)}))

	sessions := rec.snapshot()
	require.Len(t, sessions, 2)
	assert.Equal(t, midnight, sessions[0].End)
	assert.Equal(t, midnight, sessions[1].Start)
	assert.Equal(t, time.Minute, sessions[1].Duration())

	assert.Equal(t, []string{"session:editor", "day:2026-03-02", "session:editor"}, rec.calls)
}

func TestTracker_TickClosesSkippedDays(t *testing.T) {
	ctx := context.Background()
	tracker, rec, _ := setupTracker(t)

	require.NoError(t, tracker.Handle(ctx, domain.ScreenLocked{At: at(0)}))
	require.NoError(t, tracker.Tick(ctx, at(72*time.Hour)))

	require.Len(t, rec.days, 3)
	assert.Equal(t, "2026-03-02", rec.days[0].Format(time.DateOnly))
	assert.Equal(t, "2026-03-04", rec.days[2].Format(time.DateOnly))
	assert.Empty(t, rec.snapshot())
}

func TestTracker_StartStop(t *testing.T) {
	ctx := context.Background()
	tracker, rec, _ := setupTracker(t)

	assert.ErrorIs(t, tracker.Submit(ctx, focus("editor", 0)), ErrTrackerNotRunning)

	require.NoError(t, tracker.Start(ctx))
	require.NoError(t, tracker.Start(ctx))
	assert.True(t, tracker.IsRunning())

	require.NoError(t, tracker.Submit(ctx, focus("editor", 0)))
	require.NoError(t, tracker.Submit(ctx, focus("browser", time.Hour)))

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, tracker.Stop(stopCtx))
	assert.False(t, tracker.IsRunning())

	sessions := rec.snapshot()
	require.Len(t, sessions, 2)
	assert.Equal(t, "browser", sessions[1].AppID)
	assert.Equal(t, at(3*time.Hour), sessions[1].End)
	assert.Equal(t, domain.TrackerStopped, tracker.Status().State)

	require.NoError(t, tracker.Stop(stopCtx))
}

func TestTracker_RunUntilClosed(t *testing.T) {
	ctx := context.Background()
	tracker, rec, _ := setupTracker(t)

	events := make(chan domain.SystemEvent, 3)
	events <- focus("editor", 0)
	events <- focus("browser", time.Minute)
	events <- domain.ScreenLocked{At: at(2 * time.Minute)}
	close(events)

	require.NoError(t, tracker.Run(ctx, events))
	assert.Len(t, rec.snapshot(), 2)
}

func TestTracker_ReplayEndsAtLastEvent(t *testing.T) {
	ctx := context.Background()
	tracker, rec, _ := setupTracker(t)
	tracker.now = func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }

	events := make(chan domain.SystemEvent, 3)
	events <- focus("editor", 0)
	events <- domain.ScreenLocked{At: at(3 * time.Hour)}
	events <- domain.ScreenUnlocked{At: at(4 * time.Hour)}
	close(events)

	require.NoError(t, tracker.Run(ctx, events))

	sessions := rec.snapshot()
	require.Len(t, sessions, 1)
	assert.Equal(t, at(0), sessions[0].Start)
	assert.Equal(t, at(3*time.Hour), sessions[0].End)
	assert.Empty(t, rec.days, "no day after the last event may be closed")
	assert.Equal(t, domain.TrackerStopped, tracker.Status().State)
}

func TestTracker_ReplayOpenSessionEndsAtLastEvent(t *testing.T) {
	ctx := context.Background()
	tracker, rec, _ := setupTracker(t)
	tracker.now = func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }

	events := make(chan domain.SystemEvent, 2)
	events <- focus("editor", 0)
	events <- focus("browser", time.Hour)
	close(events)

	require.NoError(t, tracker.Run(ctx, events))

	sessions := rec.snapshot()
	require.Len(t, sessions, 1, "the still open browser session has no duration at the last event")
	assert.Equal(t, "editor", sessions[0].AppID)
	assert.Empty(t, rec.days)
}

func TestTracker_ShutdownNeverEndsBeforeLastEvent(t *testing.T) {
	ctx := context.Background()
	tracker, rec, _ := setupTracker(t)
	tracker.now = func() time.Time { return at(0) }

	require.NoError(t, tracker.Handle(ctx, focus("editor", time.Hour)))
	require.NoError(t, tracker.Handle(ctx, focus("browser", 2*time.Hour)))
	require.NoError(t, tracker.Shutdown(ctx))

	sessions := rec.snapshot()
	require.Len(t, sessions, 1)
	assert.Equal(t, "editor", sessions[0].AppID)
	for _, s := range sessions {
		assert.False(t, s.End.Before(s.Start))
	}
}

func TestTracker_SessionInvariants(t *testing.T) {
	ctx := context.Background()
	tracker, rec, _ := setupTracker(t)
	rng := rand.New(rand.NewSource(42))
	apps := []string{"editor", "browser", "chat", "com.apple.loginwindow"}

	offset := time.Duration(0)
	for i := 0; i < 500; i++ {
		offset += time.Duration(rng.Intn(5000)) * time.Millisecond
		var ev domain.SystemEvent
		switch rng.Intn(5) {
		case 0:
			ev = domain.ScreenLocked{At: at(offset)}
		case 1:
			ev = domain.ScreenUnlocked{At: at(offset)}
		default:
			ev = focus(apps[rng.Intn(len(apps))], offset)
		}
		require.NoError(t, tracker.Handle(ctx, ev))
	}
	require.NoError(t, tracker.Shutdown(ctx))

	sessions := rec.snapshot()
	require.NotEmpty(t, sessions)
	for i, s := range sessions {
		assert.False(t, s.End.Before(s.Start))
		assert.GreaterOrEqual(t, s.Duration(), 2*time.Second)
		assert.NotEqual(t, "com.apple.loginwindow", s.AppID)
		if i > 0 {
			assert.False(t, s.Start.Before(sessions[i-1].End), "sessions overlap")
		}
	}
}
