package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/kafeel/internal/gamification/domain"
	insightsCommands "github.com/felixgeelhaar/kafeel/internal/insights/application/commands"
	sharedApplication "github.com/felixgeelhaar/kafeel/internal/shared/application"
	trackingDomain "github.com/felixgeelhaar/kafeel/internal/tracking/domain"
	"github.com/felixgeelhaar/kafeel/pkg/observability"
)

// CategoryLookup classifies an application.
type CategoryLookup interface {
	Resolve(ctx context.Context, appID string) (trackingDomain.Resolution, error)
}

// RecordSessionCommand stores a finalized session and rewards it.
type RecordSessionCommand struct {
	Session trackingDomain.ActivitySession
}

// RecordSessionResult is the outcome of recording a session.
type RecordSessionResult struct {
	Category   trackingDomain.Category
	FocusScore float64
	Change     Change
}

// RecordSessionHandler stores a session, rescores its day and grants what
// the session earned, all in one unit of work.
type RecordSessionHandler struct {
	sessions   trackingDomain.SessionRepository
	categories CategoryLookup
	scorer     DayScorer
	stores     Stores
	rules      Rules
	recorder   EventRecorder
	uow        sharedApplication.UnitOfWork
	loc        *time.Location
	logger     *slog.Logger
	metrics    observability.Metrics
}

// NewRecordSessionHandler creates a new record session handler.
func NewRecordSessionHandler(
	sessions trackingDomain.SessionRepository,
	categories CategoryLookup,
	scorer DayScorer,
	stores Stores,
	rules Rules,
	recorder EventRecorder,
	uow sharedApplication.UnitOfWork,
	loc *time.Location,
	logger *slog.Logger,
	metrics observability.Metrics,
) *RecordSessionHandler {
	if loc == nil {
		loc = time.Local
	}
	return &RecordSessionHandler{
		sessions:   sessions,
		categories: categories,
		scorer:     scorer,
		stores:     stores,
		rules:      rules,
		recorder:   recorder,
		uow:        uow,
		loc:        loc,
		logger:     observability.Component(logger, "gamification.sessions"),
		metrics:    observability.OrNoop(metrics),
	}
}

// Handle executes the RecordSessionCommand. Nothing is stored when any step
// fails.
func (h *RecordSessionHandler) Handle(ctx context.Context, cmd RecordSessionCommand) (*RecordSessionResult, error) {
	s := cmd.Session
	at := s.End

	var result *RecordSessionResult
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.sessions.Save(txCtx, &s); err != nil {
			return fmt.Errorf("save session: %w", err)
		}

		resolution, err := h.categories.Resolve(txCtx, s.AppID)
		if err != nil {
			return err
		}

		scored, err := h.scorer.ScoreDay(txCtx, insightsCommands.ScoreDayCommand{Day: s.Start})
		if err != nil {
			return fmt.Errorf("score day: %w", err)
		}

		p, err := loadProgress(txCtx, h.stores, h.rules)
		if err != nil {
			return err
		}
		p.events.Record(trackingDomain.NewSessionRecorded(s, resolution.Category))
		p.grant(scored.XPGained, at)

		if resolution.Category == trackingDomain.CategoryProductive {
			if err := p.observe(txCtx, domain.RecordLongestFocusSession, s.Duration().Seconds(), at, s.DisplayName); err != nil {
				return err
			}
		}

		p.fire(domain.Facts{Session: &domain.SessionFacts{
			Category: resolution.Category,
			Duration: s.Duration(),
			Start:    s.Start.In(h.loc),
		}}, at)

		if err := p.save(txCtx, h.recorder); err != nil {
			return err
		}

		result = &RecordSessionResult{
			Category:   resolution.Category,
			FocusScore: scored.Score.FocusScore,
			Change:     p.change,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report(h.metrics, result.Change, "session")
	for _, t := range result.Change.Unlocked {
		h.logger.Info("achievement unlocked", "type", t)
	}
	return result, nil
}
