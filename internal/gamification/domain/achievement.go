package domain

import (
	"errors"
	"strconv"
	"time"

	trackingDomain "github.com/felixgeelhaar/kafeel/internal/tracking/domain"
)

// ErrUnknownAchievement is returned for a type missing from the catalog.
var ErrUnknownAchievement = errors.New("unknown achievement type")

// AchievementType identifies an achievement.
type AchievementType string

const (
	AchievementFirstSession       AchievementType = "first_session"
	AchievementDeepDiver          AchievementType = "deep_diver"
	AchievementMarathon           AchievementType = "marathon"
	AchievementEarlyBird          AchievementType = "early_bird"
	AchievementNightOwl           AchievementType = "night_owl"
	AchievementFirstProductiveDay AchievementType = "first_productive_day"
	AchievementFiveInARow         AchievementType = "five_in_a_row"
	AchievementPerfectDay         AchievementType = "perfect_day"
	AchievementWeekWarrior        AchievementType = "week_warrior"
	AchievementLevel10            AchievementType = "level_10"
	AchievementLevel25            AchievementType = "level_25"
	AchievementStreak7            AchievementType = "streak_7"
	AchievementStreak30           AchievementType = "streak_30"
	AchievementStreak100          AchievementType = "streak_100"
)

// Achievement is the unlock state of one achievement type. Once unlocked it
// stays unlocked.
type Achievement struct {
	Type       AchievementType
	Unlocked   bool
	UnlockedAt *time.Time
	XPReward   int64
}

// NewAchievement creates a locked achievement.
func NewAchievement(t AchievementType, xpReward int64) *Achievement {
	return &Achievement{Type: t, XPReward: xpReward}
}

// Unlock marks the achievement unlocked and reports whether it changed.
func (a *Achievement) Unlock(at time.Time) bool {
	if a.Unlocked {
		return false
	}
	a.Unlocked = true
	a.UnlockedAt = &at
	return true
}

// SessionFacts describes a session that just closed.
type SessionFacts struct {
	Category trackingDomain.Category
	Duration time.Duration
	// Start is in local time.
	Start time.Time
}

// DayFacts describes a day that was just evaluated.
type DayFacts struct {
	Day            time.Time
	Score          float64
	TrackedSeconds float64
	Productive     bool
}

// Facts is the state a trigger is checked against. Session is set after a
// session closes, Day after a day is evaluated.
type Facts struct {
	Session   *SessionFacts
	Day       *DayFacts
	WeekScore float64
	Streak    Streak
	Level     int
}

func (f Facts) productiveSession() bool {
	return f.Session != nil && f.Session.Category == trackingDomain.CategoryProductive
}

// Reward is what a trigger grants when it fires.
type Reward struct {
	XP      int64
	Shields int
}

// Trigger is a one-time rule. It fires the first time its predicate holds
// and is never granted again; Achievement.Unlocked is the guard, and for
// streak milestones the streak's milestone flag is checked as well.
type Trigger struct {
	Type        AchievementType
	Name        string
	Description string
	Reward      Reward

	// MilestoneDays is set for streak milestones.
	MilestoneDays int

	When func(Facts) bool
}

// Holds reports whether the trigger's condition is met.
func (t Trigger) Holds(f Facts) bool {
	if t.MilestoneDays > 0 && f.Streak.MilestoneReached(t.MilestoneDays) {
		return false
	}
	return t.When != nil && t.When(f)
}

// Catalog is the ordered set of one-time triggers.
type Catalog struct {
	triggers []Trigger
	byType   map[AchievementType]Trigger
}

// NewCatalog creates a catalog from triggers.
func NewCatalog(triggers ...Trigger) *Catalog {
	c := &Catalog{byType: make(map[AchievementType]Trigger, len(triggers))}
	for _, t := range triggers {
		c.triggers = append(c.triggers, t)
		c.byType[t.Type] = t
	}
	return c
}

// Triggers returns the triggers in evaluation order.
func (c *Catalog) Triggers() []Trigger {
	out := make([]Trigger, len(c.triggers))
	copy(out, c.triggers)
	return out
}

// Lookup returns the trigger of a type.
func (c *Catalog) Lookup(t AchievementType) (Trigger, error) {
	trigger, ok := c.byType[t]
	if !ok {
		return Trigger{}, ErrUnknownAchievement
	}
	return trigger, nil
}

// Due returns the triggers whose condition holds and that unlocked does not
// report as already granted.
func (c *Catalog) Due(f Facts, unlocked func(AchievementType) bool) []Trigger {
	var due []Trigger
	for _, t := range c.triggers {
		if unlocked != nil && unlocked(t.Type) {
			continue
		}
		if t.Holds(f) {
			due = append(due, t)
		}
	}
	return due
}

// DefaultCatalog returns the built-in achievements and streak milestones.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Trigger{
			Type: AchievementFirstSession, Name: "First Steps",
			Description: "Record your first session",
			Reward:      Reward{XP: 25},
			When:        func(f Facts) bool { return f.Session != nil },
		},
		Trigger{
			Type: AchievementDeepDiver, Name: "Deep Diver",
			Description: "Stay in a productive app for 45 minutes",
			Reward:      Reward{XP: 100},
			When: func(f Facts) bool {
				return f.productiveSession() && f.Session.Duration >= 45*time.Minute
			},
		},
		Trigger{
			Type: AchievementMarathon, Name: "Marathon",
			Description: "Stay in a productive app for two hours",
			Reward:      Reward{XP: 250},
			When: func(f Facts) bool {
				return f.productiveSession() && f.Session.Duration >= 2*time.Hour
			},
		},
		Trigger{
			Type: AchievementEarlyBird, Name: "Early Bird",
			Description: "Start productive work before 7am",
			Reward:      Reward{XP: 75},
			When: func(f Facts) bool {
				return f.productiveSession() && f.Session.Start.Hour() < 7
			},
		},
		Trigger{
			Type: AchievementNightOwl, Name: "Night Owl",
			Description: "Start productive work after 10pm",
			Reward:      Reward{XP: 75},
			When: func(f Facts) bool {
				return f.productiveSession() && f.Session.Start.Hour() >= 22
			},
		},
		Trigger{
			Type: AchievementFirstProductiveDay, Name: "Good Day",
			Description: "Finish your first productive day",
			Reward:      Reward{XP: 100},
			When:        func(f Facts) bool { return f.Day != nil && f.Day.Productive },
		},
		Trigger{
			Type: AchievementFiveInARow, Name: "Five in a Row",
			Description: "Reach a five day streak",
			Reward:      Reward{XP: 250},
			When:        func(f Facts) bool { return f.Streak.CurrentDays >= 5 },
		},
		Trigger{
			Type: AchievementPerfectDay, Name: "Perfect Day",
			Description: "Score 100 with at least 30 minutes tracked",
			Reward:      Reward{XP: 300},
			When: func(f Facts) bool {
				return f.Day != nil && f.Day.Score >= 100 && f.Day.TrackedSeconds >= 30*60
			},
		},
		Trigger{
			Type: AchievementWeekWarrior, Name: "Week Warrior",
			Description: "Hold a week score of 80",
			Reward:      Reward{XP: 300},
			When:        func(f Facts) bool { return f.Day != nil && f.WeekScore >= 80 },
		},
		Trigger{
			Type: AchievementLevel10, Name: "Double Digits",
			Description: "Reach level 10",
			Reward:      Reward{XP: 500},
			When:        func(f Facts) bool { return f.Level >= 10 },
		},
		Trigger{
			Type: AchievementLevel25, Name: "Quarter Century",
			Description: "Reach level 25",
			Reward:      Reward{XP: 1500},
			When:        func(f Facts) bool { return f.Level >= 25 },
		},
		streakMilestone(AchievementStreak7, "Week Streak", 7, Reward{XP: 500, Shields: 1}),
		streakMilestone(AchievementStreak30, "Month Streak", 30, Reward{XP: 2000, Shields: 2}),
		streakMilestone(AchievementStreak100, "Century Streak", 100, Reward{XP: 10000, Shields: 3}),
	)
}

func streakMilestone(t AchievementType, name string, days int, reward Reward) Trigger {
	return Trigger{
		Type:          t,
		Name:          name,
		Description:   "Reach a streak of " + strconv.Itoa(days) + " days",
		Reward:        reward,
		MilestoneDays: days,
		When:          func(f Facts) bool { return f.Streak.CurrentDays >= days },
	}
}
