package domain

import "time"

// SystemEvent is an observation delivered by the foreground watcher. The
// concrete types are ForegroundChanged, ScreenLocked and ScreenUnlocked.
type SystemEvent interface {
	Timestamp() time.Time
	isSystemEvent()
}

// ForegroundChanged reports that an application gained focus.
type ForegroundChanged struct {
	App App
	At  time.Time
}

// ScreenLocked reports that the screen was locked.
type ScreenLocked struct {
	At time.Time
}

// ScreenUnlocked reports that the screen was unlocked.
type ScreenUnlocked struct {
	At time.Time
}

func (e ForegroundChanged) Timestamp() time.Time { return e.At }
func (e ScreenLocked) Timestamp() time.Time      { return e.At }
func (e ScreenUnlocked) Timestamp() time.Time    { return e.At }

func (ForegroundChanged) isSystemEvent() {}
func (ScreenLocked) isSystemEvent()      {}
func (ScreenUnlocked) isSystemEvent()    {}
