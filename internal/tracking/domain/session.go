package domain

import (
	"time"

	"github.com/google/uuid"
)

// App identifies the focused application.
type App struct {
	ID          string
	DisplayName string
	WindowTitle string
}

// OpenSession is a session that has started and not yet ended. The tracker
// holds at most one.
type OpenSession struct {
	ID    uuid.UUID
	App   App
	Start time.Time
}

// Open starts a session for app at the given instant.
func Open(app App, at time.Time) OpenSession {
	if app.DisplayName == "" {
		app.DisplayName = app.ID
	}
	return OpenSession{
		ID:    uuid.New(),
		App:   app,
		Start: at,
	}
}

// Close finalizes the session. An end before the start is clamped to the
// start, yielding a zero-length session.
func (o OpenSession) Close(end time.Time) ActivitySession {
	if end.Before(o.Start) {
		end = o.Start
	}
	return ActivitySession{
		ID:          o.ID,
		AppID:       o.App.ID,
		DisplayName: o.App.DisplayName,
		WindowTitle: o.App.WindowTitle,
		Start:       o.Start,
		End:         end,
	}
}

// Elapsed returns how long the session has been open at now.
func (o OpenSession) Elapsed(now time.Time) time.Duration {
	if now.Before(o.Start) {
		return 0
	}
	return now.Sub(o.Start)
}

// ActivitySession is a finalized span of time spent in one application.
// End is never before Start.
type ActivitySession struct {
	ID          uuid.UUID
	AppID       string
	DisplayName string
	WindowTitle string
	Start       time.Time
	End         time.Time
}

// Duration returns the session length.
func (s ActivitySession) Duration() time.Duration {
	if s.End.Before(s.Start) {
		return 0
	}
	return s.End.Sub(s.Start)
}

// Overlap returns the part of the session inside [from, to).
func (s ActivitySession) Overlap(from, to time.Time) time.Duration {
	start := s.Start
	if from.After(start) {
		start = from
	}
	end := s.End
	if to.Before(end) {
		end = to
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}

// MeetsMinimum reports whether the session is long enough to keep.
func (s ActivitySession) MeetsMinimum(min time.Duration) bool {
	return s.Duration() >= min
}
