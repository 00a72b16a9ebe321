package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/kafeel/internal/gamification/domain"
	insightsCommands "github.com/felixgeelhaar/kafeel/internal/insights/application/commands"
	insightsQueries "github.com/felixgeelhaar/kafeel/internal/insights/application/queries"
	sharedDomain "github.com/felixgeelhaar/kafeel/internal/shared/domain"
	"github.com/felixgeelhaar/kafeel/pkg/observability"
)

// DayScorer rescores a local day.
type DayScorer interface {
	ScoreDay(ctx context.Context, cmd insightsCommands.ScoreDayCommand) (*insightsCommands.ScoreDayResult, error)
}

// WeekScorer returns the week score up to a day.
type WeekScorer interface {
	WeekScore(ctx context.Context, query insightsQueries.WeekScoreQuery) (float64, error)
}

// EventRecorder stores domain events in the current unit of work.
type EventRecorder interface {
	Record(ctx context.Context, events ...sharedDomain.DomainEvent) error
}

// Stores groups the gamification repositories.
type Stores struct {
	Streaks      domain.StreakRepository
	Profiles     domain.ProfileRepository
	Achievements domain.AchievementRepository
	Records      domain.RecordRepository
}

// Rules holds the catalog and level curve used to reward progress.
type Rules struct {
	Catalog *domain.Catalog
	Curve   domain.Curve
}

// DefaultRules returns the built-in catalog and level curve.
func DefaultRules() Rules {
	return Rules{
		Catalog: domain.DefaultCatalog(),
		Curve:   domain.NewCurve(domain.DefaultBaseXP),
	}
}

// Change summarizes what one unit of work granted.
type Change struct {
	XPGained       int64
	Level          int
	LevelsReached  []int
	Unlocked       []domain.AchievementType
	RecordsBroken  []domain.RecordCategory
	ShieldsGranted int
}

// progress is the gamification state loaded into one unit of work. It is
// mutated in memory and written back by save.
type progress struct {
	rules  Rules
	stores Stores

	streak       *domain.Streak
	profile      *domain.UserProfile
	achievements map[domain.AchievementType]*domain.Achievement
	unlocked     []*domain.Achievement
	records      []*domain.PersonalRecord
	events       sharedDomain.EventRecorder
	change       Change
}

func loadProgress(ctx context.Context, stores Stores, rules Rules) (*progress, error) {
	streak, err := stores.Streaks.GetOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("load streak: %w", err)
	}
	profile, err := stores.Profiles.GetOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	all, err := stores.Achievements.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}

	p := &progress{
		rules:        rules,
		stores:       stores,
		streak:       streak,
		profile:      profile,
		achievements: make(map[domain.AchievementType]*domain.Achievement, len(all)),
	}
	for _, a := range all {
		p.achievements[a.Type] = a
	}
	p.change.Level = profile.Level(rules.Curve)
	return p, nil
}

func (p *progress) isUnlocked(t domain.AchievementType) bool {
	a, ok := p.achievements[t]
	return ok && a.Unlocked
}

// grant adds XP and records a LevelReached event for each level crossed.
func (p *progress) grant(xp int64, at time.Time) {
	if xp <= 0 {
		return
	}
	before, after := p.profile.Grant(xp, p.rules.Curve)
	p.change.XPGained += xp
	p.change.Level = after
	for level := before + 1; level <= after; level++ {
		p.change.LevelsReached = append(p.change.LevelsReached, level)
		p.events.Record(domain.NewLevelReached(level, p.profile.TotalXP, at))
	}
}

// fire unlocks every due trigger. Rewards can raise the level, which can
// make further triggers due, so it repeats until nothing fires.
func (p *progress) fire(facts domain.Facts, at time.Time) {
	for {
		facts.Streak = *p.streak
		facts.Level = p.profile.Level(p.rules.Curve)

		fired := false
		for _, t := range p.rules.Catalog.Due(facts, p.isUnlocked) {
			a, ok := p.achievements[t.Type]
			if !ok {
				a = domain.NewAchievement(t.Type, t.Reward.XP)
				p.achievements[t.Type] = a
			}
			if !a.Unlock(at) {
				continue
			}
			fired = true
			p.unlocked = append(p.unlocked, a)
			p.change.Unlocked = append(p.change.Unlocked, t.Type)
			p.events.Record(domain.NewAchievementUnlocked(t, at))

			if t.MilestoneDays > 0 {
				p.streak.MarkMilestone(t.MilestoneDays)
			}
			p.streak.AddShields(t.Reward.Shields)
			p.change.ShieldsGranted += t.Reward.Shields
			p.grant(t.Reward.XP, at)
		}
		if !fired {
			return
		}
	}
}

// observe offers a value to a personal record.
func (p *progress) observe(ctx context.Context, category domain.RecordCategory, value float64, at time.Time, detail string) error {
	rec, err := p.stores.Records.GetOrCreate(ctx, category)
	if err != nil {
		return fmt.Errorf("load record: %w", err)
	}
	if !rec.Observe(value, at, detail) {
		return nil
	}
	p.records = append(p.records, rec)
	p.change.RecordsBroken = append(p.change.RecordsBroken, category)
	p.events.Record(domain.NewRecordBroken(rec, at))
	return nil
}

// save writes the state and the collected events.
func (p *progress) save(ctx context.Context, recorder EventRecorder) error {
	if err := p.stores.Streaks.Save(ctx, p.streak); err != nil {
		return fmt.Errorf("save streak: %w", err)
	}
	if p.change.XPGained > 0 {
		if err := p.stores.Profiles.Save(ctx, p.profile); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
	}
	for _, a := range p.unlocked {
		if err := p.stores.Achievements.Save(ctx, a); err != nil {
			return fmt.Errorf("save achievement: %w", err)
		}
	}
	for _, rec := range p.records {
		if err := p.stores.Records.Save(ctx, rec); err != nil {
			return fmt.Errorf("save record: %w", err)
		}
	}
	if events := p.events.DomainEvents(); len(events) > 0 {
		if err := recorder.Record(ctx, events...); err != nil {
			return fmt.Errorf("record events: %w", err)
		}
	}
	return nil
}

// report emits metrics for a committed change.
func report(metrics observability.Metrics, c Change, source string) {
	tag := observability.T("source", source)
	if c.XPGained > 0 {
		metrics.Counter(observability.MetricXPGranted, c.XPGained, tag)
	}
	if n := len(c.Unlocked); n > 0 {
		metrics.Counter(observability.MetricAchievementsUnlocked, int64(n), tag)
	}
	if n := len(c.RecordsBroken); n > 0 {
		metrics.Counter(observability.MetricRecordsImproved, int64(n), tag)
	}
	metrics.Gauge(observability.MetricLevel, float64(c.Level))
}
