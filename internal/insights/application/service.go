// Package application contains the application layer for the insights bounded context.
package application

import (
	"context"

	"github.com/felixgeelhaar/kafeel/internal/insights/application/commands"
	"github.com/felixgeelhaar/kafeel/internal/insights/application/queries"
	"github.com/felixgeelhaar/kafeel/internal/insights/domain"
	trackingDomain "github.com/felixgeelhaar/kafeel/internal/tracking/domain"
)

// Service provides a facade over all insights handlers.
type Service struct {
	// Command handlers
	scoreDayHandler *commands.ScoreDayHandler

	// Query handlers
	focusSummaryHandler *queries.FocusSummaryHandler
	weekScoreHandler    *queries.WeekScoreHandler
}

// NewService creates a new insights service.
func NewService(
	sessions trackingDomain.SessionRepository,
	categories commands.CategorySource,
	scores domain.DailyScoreRepository,
	cfg commands.ScoringConfig,
) *Service {
	return &Service{
		scoreDayHandler: commands.NewScoreDayHandler(sessions, categories, scores, cfg),

		focusSummaryHandler: queries.NewFocusSummaryHandler(scores),
		weekScoreHandler:    queries.NewWeekScoreHandler(scores),
	}
}

// ScoreDay recomputes a day's score.
func (s *Service) ScoreDay(ctx context.Context, cmd commands.ScoreDayCommand) (*commands.ScoreDayResult, error) {
	return s.scoreDayHandler.Handle(ctx, cmd)
}

// FocusSummary returns the score and category breakdown of a date range.
func (s *Service) FocusSummary(ctx context.Context, query queries.FocusSummaryQuery) (*queries.FocusSummary, error) {
	return s.focusSummaryHandler.Handle(ctx, query)
}

// WeekScore returns the mean daily score of the week up to a day.
func (s *Service) WeekScore(ctx context.Context, query queries.WeekScoreQuery) (float64, error) {
	return s.weekScoreHandler.Handle(ctx, query)
}
