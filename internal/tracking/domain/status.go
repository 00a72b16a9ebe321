package domain

import "time"

// TrackerState is the state of the session tracker.
type TrackerState string

const (
	TrackerIdle    TrackerState = "idle"
	TrackerActive  TrackerState = "active"
	TrackerStopped TrackerState = "stopped"
)

// LiveStatus is a snapshot of what the tracker is doing right now.
type LiveStatus struct {
	State       TrackerState `json:"state"`
	AppID       string       `json:"app_id,omitempty"`
	DisplayName string       `json:"display_name,omitempty"`
	Category    Category     `json:"category,omitempty"`
	Since       *time.Time   `json:"since,omitempty"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// LastError is set while progress could not be saved. It clears on the
	// next successful save.
	LastError    string     `json:"last_error,omitempty"`
	SaveFailedAt *time.Time `json:"save_failed_at,omitempty"`
}

// IdleStatus returns a status without an open session.
func IdleStatus(state TrackerState, at time.Time) LiveStatus {
	return LiveStatus{State: state, UpdatedAt: at}
}

// ActiveStatus returns a status for an open session.
func ActiveStatus(open OpenSession, category Category, at time.Time) LiveStatus {
	since := open.Start
	return LiveStatus{
		State:       TrackerActive,
		AppID:       open.App.ID,
		DisplayName: open.App.DisplayName,
		Category:    category,
		Since:       &since,
		UpdatedAt:   at,
	}
}

// WithSaveFailure marks the status as unable to save progress since at.
func (s LiveStatus) WithSaveFailure(err error, at time.Time) LiveStatus {
	s.LastError = err.Error()
	s.SaveFailedAt = &at
	return s
}

// SaveFailing reports whether the last save failed.
func (s LiveStatus) SaveFailing() bool {
	return s.SaveFailedAt != nil
}
