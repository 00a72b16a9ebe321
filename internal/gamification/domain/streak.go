package domain

import "time"

// StreakOutcome is the result of evaluating one day against the streak.
type StreakOutcome string

const (
	// StreakStarted means a productive day began a new streak.
	StreakStarted StreakOutcome = "started"
	// StreakExtended means a productive day continued the streak.
	StreakExtended StreakOutcome = "extended"
	// StreakProtected means a shield absorbed an unproductive day.
	StreakProtected StreakOutcome = "protected"
	// StreakBroken means an unproductive day reset the streak.
	StreakBroken StreakOutcome = "broken"
	// StreakIdle means an unproductive day passed without a streak.
	StreakIdle StreakOutcome = "idle"
	// StreakSkipped means the day had already been evaluated.
	StreakSkipped StreakOutcome = "skipped"
)

// Streak tracks consecutive productive days. There is one per user.
// CurrentDays never exceeds LongestDays and Shields is never negative.
type Streak struct {
	CurrentDays        int
	LongestDays        int
	StartDate          *time.Time
	LastProductiveDate *time.Time
	Shields            int
	Milestone7         bool
	Milestone30        bool
	Milestone100       bool
	IsActive           bool
	EvaluatedThrough   *time.Time
	UpdatedAt          time.Time
}

// NewStreak creates an empty streak.
func NewStreak() *Streak {
	return &Streak{UpdatedAt: time.Now()}
}

// Evaluate applies one finished day. Days are evaluated in order; a day at
// or before EvaluatedThrough is skipped so evaluation can be retried.
//
// A shield is only spent when there is a streak to protect.
func (s *Streak) Evaluate(day time.Time, productive bool) StreakOutcome {
	day = startOfDay(day)
	if s.EvaluatedThrough != nil && !day.After(*s.EvaluatedThrough) {
		return StreakSkipped
	}
	s.EvaluatedThrough = &day
	s.UpdatedAt = time.Now()

	var outcome StreakOutcome
	switch {
	case productive:
		if s.CurrentDays == 0 {
			s.StartDate = &day
			outcome = StreakStarted
		} else {
			outcome = StreakExtended
		}
		s.CurrentDays++
		s.LastProductiveDate = &day
		s.IsActive = true
		if s.CurrentDays > s.LongestDays {
			s.LongestDays = s.CurrentDays
		}

	case s.CurrentDays == 0:
		s.IsActive = false
		outcome = StreakIdle

	case s.Shields > 0:
		s.Shields--
		s.IsActive = true
		outcome = StreakProtected

	default:
		s.CurrentDays = 0
		s.StartDate = nil
		s.IsActive = false
		outcome = StreakBroken
	}
	return outcome
}

// MilestoneReached reports whether the milestone flag for days is set.
func (s *Streak) MilestoneReached(days int) bool {
	switch days {
	case 7:
		return s.Milestone7
	case 30:
		return s.Milestone30
	case 100:
		return s.Milestone100
	}
	return false
}

// MarkMilestone sets the milestone flag for days. It returns false if the
// flag was already set or days is not a milestone.
func (s *Streak) MarkMilestone(days int) bool {
	var flag *bool
	switch days {
	case 7:
		flag = &s.Milestone7
	case 30:
		flag = &s.Milestone30
	case 100:
		flag = &s.Milestone100
	default:
		return false
	}
	if *flag {
		return false
	}
	*flag = true
	s.UpdatedAt = time.Now()
	return true
}

// AddShields grants grace tokens. Negative amounts are ignored.
func (s *Streak) AddShields(n int) {
	if n > 0 {
		s.Shields += n
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
