package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/kafeel/internal/insights/domain"
	trackingDomain "github.com/felixgeelhaar/kafeel/internal/tracking/domain"
)

// CategorySource provides a consistent view of the category mappings.
type CategorySource interface {
	Snapshot(ctx context.Context) (trackingDomain.CategoryIndex, error)
}

// ScoringConfig holds scoring settings.
type ScoringConfig struct {
	// ProductiveThreshold is the lowest score of a productive day.
	ProductiveThreshold float64

	// MinSessionDuration excludes shorter sessions from scoring.
	MinSessionDuration time.Duration

	// Location defines local day boundaries.
	Location *time.Location
}

// DefaultScoringConfig returns the default scoring settings.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		ProductiveThreshold: domain.DefaultProductiveThreshold,
		MinSessionDuration:  2 * time.Second,
		Location:            time.Local,
	}
}

// ScoreDayCommand rescores one local day.
type ScoreDayCommand struct {
	Day time.Time
}

// ScoreDayResult is the outcome of scoring a day.
type ScoreDayResult struct {
	Score     *domain.DailyScore
	Breakdown domain.Breakdown
	XPGained  int64
}

// ScoreDayHandler recomputes a day's DailyScore from its sessions.
type ScoreDayHandler struct {
	sessions   trackingDomain.SessionRepository
	categories CategorySource
	scores     domain.DailyScoreRepository
	cfg        ScoringConfig
	now        func() time.Time
}

// NewScoreDayHandler creates a new score day handler.
func NewScoreDayHandler(
	sessions trackingDomain.SessionRepository,
	categories CategorySource,
	scores domain.DailyScoreRepository,
	cfg ScoringConfig,
) *ScoreDayHandler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &ScoreDayHandler{
		sessions:   sessions,
		categories: categories,
		scores:     scores,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Handle scores the day. The result depends only on the day's sessions and
// the current mappings, so handling the same day twice is harmless.
func (h *ScoreDayHandler) Handle(ctx context.Context, cmd ScoreDayCommand) (*ScoreDayResult, error) {
	from := domain.StartOfDay(cmd.Day.In(h.cfg.Location))
	to := from.AddDate(0, 0, 1)

	breakdown, err := h.Breakdown(ctx, from, to)
	if err != nil {
		return nil, err
	}

	score, err := h.scores.GetOrCreate(ctx, from)
	if err != nil {
		return nil, err
	}

	gained := score.Apply(breakdown, h.cfg.ProductiveThreshold, h.now())
	if err := h.scores.Save(ctx, score); err != nil {
		return nil, err
	}

	return &ScoreDayResult{
		Score:     score,
		Breakdown: breakdown,
		XPGained:  gained,
	}, nil
}

// Breakdown aggregates the sessions overlapping [from, to).
func (h *ScoreDayHandler) Breakdown(ctx context.Context, from, to time.Time) (domain.Breakdown, error) {
	sessions, err := h.sessions.FindOverlapping(ctx, from, to)
	if err != nil {
		return domain.Breakdown{}, fmt.Errorf("load sessions: %w", err)
	}

	index, err := h.categories.Snapshot(ctx)
	if err != nil {
		return domain.Breakdown{}, err
	}

	classified := make([]domain.ClassifiedSession, 0, len(sessions))
	for _, s := range sessions {
		if !s.MeetsMinimum(h.cfg.MinSessionDuration) {
			continue
		}
		classified = append(classified, domain.ClassifiedSession{
			Session:  *s,
			Category: index.Resolve(s.AppID).Category,
		})
	}

	return domain.Aggregate(classified, from, to, h.cfg.Location), nil
}
