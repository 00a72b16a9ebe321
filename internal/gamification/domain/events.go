package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/kafeel/internal/shared/domain"
)

const (
	AggregateStreak      = "streak"
	AggregateAchievement = "achievement"
	AggregateProfile     = "user_profile"

	RoutingKeyDayEvaluated        = "gamification.day.evaluated"
	RoutingKeyAchievementUnlocked = "gamification.achievement.unlocked"
	RoutingKeyLevelReached        = "gamification.level.reached"
	RoutingKeyRecordBroken        = "gamification.record.broken"
)

// DayEvaluated is published once per finished day.
type DayEvaluated struct {
	sharedDomain.BaseEvent
	Day         string        `json:"day"`
	FocusScore  float64       `json:"focus_score"`
	Productive  bool          `json:"productive"`
	Outcome     StreakOutcome `json:"outcome"`
	CurrentDays int           `json:"current_days"`
	Shields     int           `json:"shields"`
}

// NewDayEvaluated creates the event for an evaluated day.
func NewDayEvaluated(day time.Time, score float64, productive bool, outcome StreakOutcome, s *Streak, at time.Time) DayEvaluated {
	return DayEvaluated{
		BaseEvent:   sharedDomain.NewBaseEvent(AggregateStreak, RoutingKeyDayEvaluated, at),
		Day:         day.Format(time.DateOnly),
		FocusScore:  score,
		Productive:  productive,
		Outcome:     outcome,
		CurrentDays: s.CurrentDays,
		Shields:     s.Shields,
	}
}

// AchievementUnlocked is published when a one-time trigger fires.
type AchievementUnlocked struct {
	sharedDomain.BaseEvent
	Type     AchievementType `json:"type"`
	Name     string          `json:"name"`
	XPReward int64           `json:"xp_reward"`
	Shields  int             `json:"shields,omitempty"`
}

// NewAchievementUnlocked creates the event for a fired trigger.
func NewAchievementUnlocked(t Trigger, at time.Time) AchievementUnlocked {
	return AchievementUnlocked{
		BaseEvent: sharedDomain.NewBaseEvent(AggregateAchievement, RoutingKeyAchievementUnlocked, at),
		Type:      t.Type,
		Name:      t.Name,
		XPReward:  t.Reward.XP,
		Shields:   t.Reward.Shields,
	}
}

// LevelReached is published when a grant moves the profile up a level.
type LevelReached struct {
	sharedDomain.BaseEvent
	Level   int   `json:"level"`
	Tier    Tier  `json:"tier"`
	TotalXP int64 `json:"total_xp"`
}

// NewLevelReached creates the event for a level up.
func NewLevelReached(level int, totalXP int64, at time.Time) LevelReached {
	return LevelReached{
		BaseEvent: sharedDomain.NewBaseEvent(AggregateProfile, RoutingKeyLevelReached, at),
		Level:     level,
		Tier:      TierFor(level),
		TotalXP:   totalXP,
	}
}

// RecordBroken is published when a personal record improves.
type RecordBroken struct {
	sharedDomain.BaseEvent
	Category      RecordCategory `json:"category"`
	Value         float64        `json:"value"`
	PreviousValue float64        `json:"previous_value"`
	Detail        string         `json:"detail,omitempty"`
}

// NewRecordBroken creates the event for an improved record.
func NewRecordBroken(r *PersonalRecord, at time.Time) RecordBroken {
	var previous float64
	if r.PreviousValue != nil {
		previous = *r.PreviousValue
	}
	return RecordBroken{
		BaseEvent:     sharedDomain.NewBaseEvent(AggregateProfile, RoutingKeyRecordBroken, at),
		Category:      r.Category,
		Value:         r.Value,
		PreviousValue: previous,
		Detail:        r.Detail,
	}
}
