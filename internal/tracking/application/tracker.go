// Package application contains the application layer for the tracking
// bounded context: the session tracker and category management.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/kafeel/internal/tracking/domain"
	"github.com/felixgeelhaar/kafeel/pkg/observability"
)

// ErrTrackerNotRunning is returned by Submit when the tracker is stopped.
var ErrTrackerNotRunning = errors.New("tracker is not running")

// SessionSink receives every finalized session that meets the minimum
// duration.
type SessionSink interface {
	RecordSession(ctx context.Context, session domain.ActivitySession) error
}

// DayCloser evaluates a local day once all of its sessions are finalized.
type DayCloser interface {
	CloseDay(ctx context.Context, day time.Time) error
}

// ForegroundSampler reports the currently focused application.
type ForegroundSampler interface {
	Foreground(ctx context.Context) (domain.App, bool, error)
}

// CategoryLookup classifies an application.
type CategoryLookup interface {
	Resolve(ctx context.Context, appID string) (domain.Resolution, error)
}

// StatusPublisher receives live status updates.
type StatusPublisher interface {
	Publish(ctx context.Context, status domain.LiveStatus) error
}

// TrackerConfig holds tracker settings.
type TrackerConfig struct {
	// MinSessionDuration is the shortest session that is kept.
	MinSessionDuration time.Duration

	// IdleAppID marks non-work time. Focusing it closes the open session
	// without opening a new one.
	IdleAppID string

	// Location defines local day boundaries.
	Location *time.Location

	// BufferSize is the capacity of the event channel used by Start.
	BufferSize int
}

// DefaultTrackerConfig returns the default tracker settings.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		MinSessionDuration: 2 * time.Second,
		IdleAppID:          "com.apple.loginwindow",
		Location:           time.Local,
		BufferSize:         64,
	}
}

// Tracker turns system events into activity sessions. Events are handled one
// at a time on a single loop; at most one session is open at any moment.
type Tracker struct {
	cfg        TrackerConfig
	sink       SessionSink
	days       DayCloser
	categories CategoryLookup
	status     StatusPublisher
	sampler    ForegroundSampler
	onError    func(error)
	logger     *slog.Logger
	metrics    observability.Metrics
	now        func() time.Time

	events chan domain.SystemEvent

	lifeMu  sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	runErr  error

	mu           sync.Mutex
	state        domain.TrackerState
	open         *domain.OpenSession
	openCategory domain.Category
	lastApp      *domain.App
	day          time.Time
	lastAt       time.Time
	saveErr      error
	saveFailedAt time.Time
}

// NewTracker creates a tracker that forwards sessions to sink.
func NewTracker(cfg TrackerConfig, sink SessionSink, logger *slog.Logger, metrics observability.Metrics) *Tracker {
	defaults := DefaultTrackerConfig()
	if cfg.MinSessionDuration < 0 {
		cfg.MinSessionDuration = 0
	}
	if cfg.Location == nil {
		cfg.Location = defaults.Location
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaults.BufferSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Tracker{
		cfg:     cfg,
		sink:    sink,
		logger:  observability.Component(logger, "tracker"),
		metrics: observability.OrNoop(metrics),
		now:     time.Now,
		events:  make(chan domain.SystemEvent, cfg.BufferSize),
		state:   domain.TrackerIdle,
	}
}

// WithDayCloser sets the component notified at local midnight.
func (t *Tracker) WithDayCloser(days DayCloser) *Tracker {
	t.days = days
	return t
}

// WithCategories sets the lookup used to label the live status.
func (t *Tracker) WithCategories(categories CategoryLookup) *Tracker {
	t.categories = categories
	return t
}

// WithStatus sets the live status publisher.
func (t *Tracker) WithStatus(status StatusPublisher) *Tracker {
	t.status = status
	return t
}

// WithSampler sets the source queried for the foreground app after unlock.
// Without one the tracker reopens the app that was focused before the lock.
func (t *Tracker) WithSampler(sampler ForegroundSampler) *Tracker {
	t.sampler = sampler
	return t
}

// OnError registers a callback for persistence failures.
func (t *Tracker) OnError(fn func(error)) *Tracker {
	t.onError = fn
	return t
}

// Start runs the event loop in the background. Starting a running tracker
// is a no-op.
func (t *Tracker) Start(ctx context.Context) error {
	t.lifeMu.Lock()
	defer t.lifeMu.Unlock()

	if t.running {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.running = true
	t.cancel = cancel
	t.done = done
	t.runErr = nil

	go func() {
		err := t.Run(loopCtx, t.events)
		t.lifeMu.Lock()
		t.runErr = err
		t.running = false
		t.lifeMu.Unlock()
		close(done)
	}()

	t.logger.Info("tracker started")
	return nil
}

// Stop ends the event loop. Buffered events are handled and the open
// session is finalized before Stop returns.
func (t *Tracker) Stop(ctx context.Context) error {
	t.lifeMu.Lock()
	cancel, done := t.cancel, t.done
	t.lifeMu.Unlock()

	if done == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	t.lifeMu.Lock()
	defer t.lifeMu.Unlock()
	err := t.runErr
	t.cancel = nil
	t.done = nil
	t.runErr = nil
	t.logger.Info("tracker stopped")
	return err
}

// IsRunning reports whether the background loop is active.
func (t *Tracker) IsRunning() bool {
	t.lifeMu.Lock()
	defer t.lifeMu.Unlock()
	return t.running
}

// Submit queues an event for the background loop.
func (t *Tracker) Submit(ctx context.Context, event domain.SystemEvent) error {
	t.lifeMu.Lock()
	running, done := t.running, t.done
	t.lifeMu.Unlock()

	if !running {
		return ErrTrackerNotRunning
	}

	select {
	case t.events <- event:
		return nil
	case <-done:
		return ErrTrackerNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run consumes events until the channel is closed or ctx is cancelled, then
// finalizes the open session. A closed channel means the input ended, so the
// session ends at the last event; cancellation ends it at the current time.
// Run also closes days at local midnight. The returned error is the result
// of the final flush.
func (t *Tracker) Run(ctx context.Context, events <-chan domain.SystemEvent) error {
	t.publishStatus(ctx, t.now())

	timer := time.NewTimer(t.untilMidnight(t.now()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx := context.WithoutCancel(ctx)
			t.drain(flushCtx, events)
			return t.Shutdown(flushCtx)

		case event, ok := <-events:
			if !ok {
				return t.finish(ctx, time.Time{})
			}
			_ = t.Handle(ctx, event)

		case <-timer.C:
			_ = t.Tick(ctx, t.now())
		}
		timer.Reset(t.untilMidnight(t.now()))
	}
}

func (t *Tracker) drain(ctx context.Context, events <-chan domain.SystemEvent) {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			_ = t.Handle(ctx, event)
		default:
			return
		}
	}
}

// Handle processes one event. Callers other than Run must not invoke it
// concurrently with a running loop.
func (t *Tracker) Handle(ctx context.Context, event domain.SystemEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	at := event.Timestamp()
	if at.IsZero() {
		at = t.now()
	}
	t.observe(at)

	errs := []error{t.crossDays(ctx, at)}

	switch e := event.(type) {
	case domain.ForegroundChanged:
		errs = append(errs, t.focus(ctx, e.App, at))
	case domain.ScreenLocked:
		t.logger.Debug("screen locked")
		errs = append(errs, t.finalize(ctx, at))
	case domain.ScreenUnlocked:
		t.logger.Debug("screen unlocked")
		if app, ok := t.sample(ctx); ok {
			errs = append(errs, t.focus(ctx, app, at))
		}
	default:
		t.logger.Warn("ignoring unknown system event", "type", fmt.Sprintf("%T", event))
	}

	t.publishStatusLocked(ctx, at)
	return errors.Join(errs...)
}

// Tick closes any local days that ended before now. Run calls it at
// midnight; callers driving Handle directly may call it themselves.
func (t *Tracker) Tick(ctx context.Context, now time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.observe(now)
	err := t.crossDays(ctx, now)
	t.publishStatusLocked(ctx, now)
	return err
}

// Shutdown finalizes the open session at the current time and publishes the
// stopped state. The end never falls before the last handled event.
func (t *Tracker) Shutdown(ctx context.Context) error {
	return t.finish(ctx, t.now())
}

// finish stops tracking at end, or at the last handled event when end is
// zero or earlier than it.
func (t *Tracker) finish(ctx context.Context, end time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if end.Before(t.lastAt) {
		end = t.lastAt
	}
	if end.IsZero() {
		end = t.now()
	}
	err := errors.Join(t.crossDays(ctx, end), t.finalize(ctx, end))
	t.state = domain.TrackerStopped
	t.publishStatusLocked(ctx, end)
	return err
}

func (t *Tracker) observe(at time.Time) {
	if at.After(t.lastAt) {
		t.lastAt = at
	}
}

// Status returns the current live status.
func (t *Tracker) Status() domain.LiveStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusLocked(t.now())
}

func (t *Tracker) focus(ctx context.Context, app domain.App, at time.Time) error {
	if app.ID == "" {
		t.logger.Debug("ignoring foreground change without app id")
		return nil
	}

	if app.ID == t.cfg.IdleAppID {
		return t.finalize(ctx, at)
	}

	if t.open != nil && t.open.App.ID == app.ID {
		return nil
	}

	err := t.finalize(ctx, at)

	open := domain.Open(app, at)
	t.open = &open
	t.openCategory = t.categoryOf(ctx, app.ID)
	t.lastApp = &open.App
	t.state = domain.TrackerActive
	return err
}

// finalize closes the open session and forwards it when it is long enough.
func (t *Tracker) finalize(ctx context.Context, at time.Time) error {
	if t.open == nil {
		t.state = domain.TrackerIdle
		return nil
	}

	session := t.open.Close(at)
	category := t.openCategory
	t.open = nil
	t.openCategory = ""
	t.state = domain.TrackerIdle

	if !session.MeetsMinimum(t.cfg.MinSessionDuration) {
		t.metrics.Counter(observability.MetricSessionsDropped, 1)
		t.logger.Debug("dropping short session",
			"app_id", session.AppID,
			"duration", session.Duration(),
		)
		return nil
	}

	if err := t.sink.RecordSession(ctx, session); err != nil {
		t.metrics.Counter(observability.MetricPersistenceErrors, 1, observability.T("stage", "session"))
		t.logger.Error("failed to record session",
			"session_id", session.ID,
			"app_id", session.AppID,
			"error", err,
		)
		t.report(err, at)
		return err
	}
	t.saveErr = nil

	t.metrics.Counter(observability.MetricSessionsRecorded, 1, observability.T("category", category.String()))
	t.metrics.Histogram(observability.MetricSessionSeconds, session.Duration().Seconds())
	t.logger.Debug("session recorded",
		"session_id", session.ID,
		"app_id", session.AppID,
		"duration", session.Duration(),
	)
	return nil
}

// crossDays splits the open session at every local midnight before at and
// closes each finished day after its sessions are recorded.
func (t *Tracker) crossDays(ctx context.Context, at time.Time) error {
	if t.day.IsZero() {
		t.day = t.startOfDay(at)
		return nil
	}

	var errs []error
	for next := t.day.AddDate(0, 0, 1); !at.Before(next); next = next.AddDate(0, 0, 1) {
		if t.open != nil {
			app := t.open.App
			category := t.openCategory
			errs = append(errs, t.finalize(ctx, next))

			open := domain.Open(app, next)
			t.open = &open
			t.openCategory = category
			t.state = domain.TrackerActive
		}

		finished := t.day
		t.day = next

		if t.days == nil {
			continue
		}
		if err := t.days.CloseDay(ctx, finished); err != nil {
			t.metrics.Counter(observability.MetricPersistenceErrors, 1, observability.T("stage", "day"))
			t.logger.Error("failed to close day",
				"day", finished.Format(time.DateOnly),
				"error", err,
			)
			t.report(err, finished.AddDate(0, 0, 1))
			errs = append(errs, err)
			continue
		}
		t.saveErr = nil
	}
	return errors.Join(errs...)
}

func (t *Tracker) sample(ctx context.Context) (domain.App, bool) {
	if t.sampler != nil {
		app, ok, err := t.sampler.Foreground(ctx)
		if err != nil {
			t.logger.Warn("failed to sample foreground app", "error", err)
		} else if ok {
			return app, true
		}
	}
	if t.lastApp != nil {
		return *t.lastApp, true
	}
	return domain.App{}, false
}

func (t *Tracker) categoryOf(ctx context.Context, appID string) domain.Category {
	if t.categories == nil {
		return domain.CategoryNeutral
	}
	res, err := t.categories.Resolve(ctx, appID)
	if err != nil {
		t.logger.Warn("failed to resolve category for status", "app_id", appID, "error", err)
		return domain.CategoryNeutral
	}
	return res.Category
}

func (t *Tracker) publishStatus(ctx context.Context, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.publishStatusLocked(ctx, at)
}

func (t *Tracker) publishStatusLocked(ctx context.Context, at time.Time) {
	if t.status == nil {
		return
	}
	if err := t.status.Publish(ctx, t.statusLocked(at)); err != nil {
		t.logger.Warn("failed to publish status", "error", err)
	}
}

func (t *Tracker) statusLocked(at time.Time) domain.LiveStatus {
	var st domain.LiveStatus
	if t.open != nil {
		st = domain.ActiveStatus(*t.open, t.openCategory, at)
	} else {
		st = domain.IdleStatus(t.state, at)
	}
	if t.saveErr != nil {
		st = st.WithSaveFailure(t.saveErr, t.saveFailedAt)
	}
	return st
}

// report keeps the failure in the live status until the next successful
// save and passes it to the OnError callback.
func (t *Tracker) report(err error, at time.Time) {
	t.saveErr = err
	t.saveFailedAt = at
	if t.onError != nil {
		t.onError(err)
	}
}

func (t *Tracker) startOfDay(at time.Time) time.Time {
	local := at.In(t.cfg.Location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, t.cfg.Location)
}

func (t *Tracker) untilMidnight(now time.Time) time.Duration {
	next := t.startOfDay(now).AddDate(0, 0, 1)
	if d := next.Sub(now); d > 0 {
		return d + time.Millisecond
	}
	return time.Millisecond
}
