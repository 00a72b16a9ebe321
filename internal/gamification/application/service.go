// Package application contains the application layer for the gamification
// bounded context: streaks, personal records, achievements and levels.
package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/kafeel/internal/gamification/application/commands"
	"github.com/felixgeelhaar/kafeel/internal/gamification/application/queries"
	"github.com/felixgeelhaar/kafeel/internal/gamification/domain"
	sharedApplication "github.com/felixgeelhaar/kafeel/internal/shared/application"
	trackingDomain "github.com/felixgeelhaar/kafeel/internal/tracking/domain"
	"github.com/felixgeelhaar/kafeel/pkg/observability"
)

// Dependencies groups everything the service needs.
type Dependencies struct {
	Sessions   trackingDomain.SessionRepository
	Categories commands.CategoryLookup
	Scorer     commands.DayScorer
	Weeks      commands.WeekScorer
	FirstDay   commands.FirstDayFinder
	Stores     commands.Stores
	Rules      commands.Rules
	Recorder   commands.EventRecorder
	UnitOfWork sharedApplication.UnitOfWork
	Location   *time.Location
	Logger     *slog.Logger
	Metrics    observability.Metrics
}

// Service provides a facade over all gamification handlers. It receives
// finalized sessions and finished days from the tracker.
type Service struct {
	stores  commands.Stores
	rules   commands.Rules
	metrics observability.Metrics

	// Command handlers
	recordSessionHandler *commands.RecordSessionHandler
	evaluateDayHandler   *commands.EvaluateDayHandler

	// Query handlers
	getProfileHandler       *queries.GetProfileHandler
	getStreakHandler        *queries.GetStreakHandler
	listAchievementsHandler *queries.ListAchievementsHandler
	listRecordsHandler      *queries.ListRecordsHandler
}

// NewService creates a new gamification service.
func NewService(deps Dependencies) *Service {
	if deps.Rules.Catalog == nil {
		deps.Rules = commands.DefaultRules()
	}
	return &Service{
		stores:  deps.Stores,
		rules:   deps.Rules,
		metrics: deps.Metrics,

		recordSessionHandler: commands.NewRecordSessionHandler(
			deps.Sessions, deps.Categories, deps.Scorer, deps.Stores, deps.Rules,
			deps.Recorder, deps.UnitOfWork, deps.Location, deps.Logger, deps.Metrics,
		),
		evaluateDayHandler: commands.NewEvaluateDayHandler(
			deps.Scorer, deps.Weeks, deps.FirstDay, deps.Stores, deps.Rules,
			deps.Recorder, deps.UnitOfWork, deps.Location, deps.Logger, deps.Metrics,
		),

		getProfileHandler:       queries.NewGetProfileHandler(deps.Stores.Profiles, deps.Rules.Curve),
		getStreakHandler:        queries.NewGetStreakHandler(deps.Stores.Streaks),
		listAchievementsHandler: queries.NewListAchievementsHandler(deps.Stores.Achievements, deps.Rules.Catalog),
		listRecordsHandler:      queries.NewListRecordsHandler(deps.Stores.Records),
	}
}

// Seed creates a locked row for every catalog achievement.
func (s *Service) Seed(ctx context.Context) error {
	triggers := s.rules.Catalog.Triggers()
	achievements := make([]*domain.Achievement, 0, len(triggers))
	for _, t := range triggers {
		achievements = append(achievements, domain.NewAchievement(t.Type, t.Reward.XP))
	}
	return s.stores.Achievements.Seed(ctx, achievements)
}

// RecordSession stores a finalized session and grants its rewards.
func (s *Service) RecordSession(ctx context.Context, session trackingDomain.ActivitySession) error {
	return observability.TimeOperation(nil, s.metrics, "record_session", func() error {
		_, err := s.recordSessionHandler.Handle(ctx, commands.RecordSessionCommand{Session: session})
		return err
	})
}

// CloseDay evaluates a finished day. Handlers log their own failures, so
// the timing is only reported to metrics.
func (s *Service) CloseDay(ctx context.Context, day time.Time) error {
	return observability.TimeOperation(nil, s.metrics, "evaluate_day", func() error {
		_, err := s.evaluateDayHandler.Handle(ctx, commands.EvaluateDayCommand{Day: day})
		return err
	})
}

// EvaluateDay evaluates a finished day and returns the outcome.
func (s *Service) EvaluateDay(ctx context.Context, cmd commands.EvaluateDayCommand) (*commands.EvaluateDayResult, error) {
	return s.evaluateDayHandler.Handle(ctx, cmd)
}

// CatchUp evaluates every finished day missed while not running. A failure
// leaves the remaining days for the next call.
func (s *Service) CatchUp(ctx context.Context, cmd commands.CatchUpCommand) ([]*commands.EvaluateDayResult, error) {
	results, err := s.evaluateDayHandler.CatchUp(ctx, cmd)
	if err != nil && s.metrics != nil {
		s.metrics.Counter(observability.MetricPersistenceErrors, 1, observability.T("stage", "catch_up"))
	}
	return results, err
}

// Profile returns the XP profile.
func (s *Service) Profile(ctx context.Context) (*queries.ProfileView, error) {
	return s.getProfileHandler.Handle(ctx)
}

// Streak returns the current streak.
func (s *Service) Streak(ctx context.Context) (*queries.StreakView, error) {
	return s.getStreakHandler.Handle(ctx)
}

// Achievements lists achievements in catalog order.
func (s *Service) Achievements(ctx context.Context, query queries.ListAchievementsQuery) ([]queries.AchievementView, error) {
	return s.listAchievementsHandler.Handle(ctx, query)
}

// Records lists personal records.
func (s *Service) Records(ctx context.Context) ([]queries.RecordView, error) {
	return s.listRecordsHandler.Handle(ctx)
}
