package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/kafeel/internal/gamification/domain"
	insightsCommands "github.com/felixgeelhaar/kafeel/internal/insights/application/commands"
	insightsQueries "github.com/felixgeelhaar/kafeel/internal/insights/application/queries"
	insightsDomain "github.com/felixgeelhaar/kafeel/internal/insights/domain"
	sharedApplication "github.com/felixgeelhaar/kafeel/internal/shared/application"
	"github.com/felixgeelhaar/kafeel/pkg/observability"
)

// FirstDayFinder reports the earliest day that has a score.
type FirstDayFinder interface {
	FirstDay(ctx context.Context) (*time.Time, error)
}

// EvaluateDayCommand closes one finished local day.
type EvaluateDayCommand struct {
	Day time.Time
}

// EvaluateDayResult is the outcome of evaluating a day.
type EvaluateDayResult struct {
	Day        time.Time
	FocusScore float64
	Productive bool
	Outcome    domain.StreakOutcome
	Streak     domain.Streak
	WeekScore  float64
	Change     Change
}

// CatchUpCommand evaluates every finished day not yet evaluated.
type CatchUpCommand struct {
	Now time.Time
}

// EvaluateDayHandler advances the streak by one day and grants the day's
// rewards in one unit of work. Evaluating a day twice is a no-op.
type EvaluateDayHandler struct {
	scorer   DayScorer
	weeks    WeekScorer
	first    FirstDayFinder
	stores   Stores
	rules    Rules
	recorder EventRecorder
	uow      sharedApplication.UnitOfWork
	loc      *time.Location
	logger   *slog.Logger
	metrics  observability.Metrics
	now      func() time.Time
}

// NewEvaluateDayHandler creates a new evaluate day handler.
func NewEvaluateDayHandler(
	scorer DayScorer,
	weeks WeekScorer,
	first FirstDayFinder,
	stores Stores,
	rules Rules,
	recorder EventRecorder,
	uow sharedApplication.UnitOfWork,
	loc *time.Location,
	logger *slog.Logger,
	metrics observability.Metrics,
) *EvaluateDayHandler {
	if loc == nil {
		loc = time.Local
	}
	return &EvaluateDayHandler{
		scorer:   scorer,
		weeks:    weeks,
		first:    first,
		stores:   stores,
		rules:    rules,
		recorder: recorder,
		uow:      uow,
		loc:      loc,
		logger:   observability.Component(logger, "gamification.days"),
		metrics:  observability.OrNoop(metrics),
		now:      time.Now,
	}
}

// Handle executes the EvaluateDayCommand.
func (h *EvaluateDayHandler) Handle(ctx context.Context, cmd EvaluateDayCommand) (*EvaluateDayResult, error) {
	day := insightsDomain.StartOfDay(cmd.Day.In(h.loc))
	at := h.now()

	result := &EvaluateDayResult{Day: day}
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		p, err := loadProgress(txCtx, h.stores, h.rules)
		if err != nil {
			return err
		}
		if p.streak.EvaluatedThrough != nil && !day.After(*p.streak.EvaluatedThrough) {
			result.Outcome = domain.StreakSkipped
			result.Streak = *p.streak
			return nil
		}

		scored, err := h.scorer.ScoreDay(txCtx, insightsCommands.ScoreDayCommand{Day: day})
		if err != nil {
			return fmt.Errorf("score day: %w", err)
		}
		score := scored.Score
		p.grant(scored.XPGained, at)

		outcome := p.streak.Evaluate(day, score.IsProductive)

		week, err := h.weeks.WeekScore(txCtx, insightsQueries.WeekScoreQuery{Day: day})
		if err != nil {
			return fmt.Errorf("week score: %w", err)
		}

		dayKey := day.Format(time.DateOnly)
		observations := []struct {
			category domain.RecordCategory
			value    float64
			detail   string
		}{
			{domain.RecordBestDayScore, score.FocusScore, dayKey},
			{domain.RecordHighestXPDay, float64(score.XPEarned), dayKey},
			{domain.RecordLongestStreak, float64(p.streak.CurrentDays), dayKey},
			{domain.RecordBestWeekScore, week, insightsDomain.WeekStart(day).Format(time.DateOnly)},
		}
		for _, o := range observations {
			if err := p.observe(txCtx, o.category, o.value, at, o.detail); err != nil {
				return err
			}
		}

		p.fire(domain.Facts{
			Day: &domain.DayFacts{
				Day:            day,
				Score:          score.FocusScore,
				TrackedSeconds: score.TotalSeconds(),
				Productive:     score.IsProductive,
			},
			WeekScore: week,
		}, at)

		p.events.Record(domain.NewDayEvaluated(day, score.FocusScore, score.IsProductive, outcome, p.streak, at))

		if err := p.save(txCtx, h.recorder); err != nil {
			return err
		}

		result.FocusScore = score.FocusScore
		result.Productive = score.IsProductive
		result.Outcome = outcome
		result.Streak = *p.streak
		result.WeekScore = week
		result.Change = p.change
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Outcome != domain.StreakSkipped {
		report(h.metrics, result.Change, "day")
		h.metrics.Counter(observability.MetricDaysEvaluated, 1, observability.T("outcome", string(result.Outcome)))
		h.metrics.Gauge(observability.MetricStreakDays, float64(result.Streak.CurrentDays))
		h.metrics.Histogram(observability.MetricFocusScore, result.FocusScore)
		h.logger.Info("day evaluated",
			"day", result.Day.Format(time.DateOnly),
			"score", result.FocusScore,
			"outcome", result.Outcome,
			"streak", result.Streak.CurrentDays,
		)
	}
	return result, nil
}

// CatchUp evaluates every day after the last evaluated one up to, but not
// including, the day of cmd.Now. Without any evaluation yet it starts at the
// first scored day. Each day commits on its own, so a failure keeps the
// days already evaluated.
func (h *EvaluateDayHandler) CatchUp(ctx context.Context, cmd CatchUpCommand) ([]*EvaluateDayResult, error) {
	now := cmd.Now
	if now.IsZero() {
		now = h.now()
	}
	today := insightsDomain.StartOfDay(now.In(h.loc))

	streak, err := h.stores.Streaks.GetOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("load streak: %w", err)
	}

	var next time.Time
	if streak.EvaluatedThrough != nil {
		next = insightsDomain.StartOfDay(streak.EvaluatedThrough.In(h.loc)).AddDate(0, 0, 1)
	} else {
		first, err := h.first.FirstDay(ctx)
		if err != nil {
			return nil, err
		}
		if first == nil {
			return nil, nil
		}
		next = insightsDomain.StartOfDay(first.In(h.loc))
	}

	var results []*EvaluateDayResult
	for day := next; day.Before(today); day = day.AddDate(0, 0, 1) {
		res, err := h.Handle(ctx, EvaluateDayCommand{Day: day})
		if err != nil {
			return results, fmt.Errorf("evaluate %s: %w", day.Format(time.DateOnly), err)
		}
		results = append(results, res)
	}
	return results, nil
}
