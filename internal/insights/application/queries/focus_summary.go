package queries

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/kafeel/internal/insights/domain"
)

// ErrInvalidRange is returned when the range ends before it starts.
var ErrInvalidRange = errors.New("range end is before start")

// FocusSummaryQuery selects days from From through To, inclusive.
type FocusSummaryQuery struct {
	From time.Time
	To   time.Time
}

// FocusSummary is the Focus Score and category breakdown of a range.
type FocusSummary struct {
	From               time.Time
	To                 time.Time
	FocusScore         float64
	ProductiveSeconds  float64
	NeutralSeconds     float64
	DistractingSeconds float64
	XPEarned           int64
	ProductiveDays     int
	Days               []*domain.DailyScore
}

// TotalSeconds returns all tracked seconds in the range.
func (s *FocusSummary) TotalSeconds() float64 {
	return s.ProductiveSeconds + s.NeutralSeconds + s.DistractingSeconds
}

// FocusSummaryHandler handles focus summary queries.
type FocusSummaryHandler struct {
	scores domain.DailyScoreRepository
}

// NewFocusSummaryHandler creates a new focus summary handler.
func NewFocusSummaryHandler(scores domain.DailyScoreRepository) *FocusSummaryHandler {
	return &FocusSummaryHandler{scores: scores}
}

// Handle sums the scored days in range. The range score weighs every
// second equally rather than averaging daily scores.
func (h *FocusSummaryHandler) Handle(ctx context.Context, query FocusSummaryQuery) (*FocusSummary, error) {
	from := domain.StartOfDay(query.From)
	to := domain.StartOfDay(query.To)
	if to.Before(from) {
		return nil, ErrInvalidRange
	}

	days, err := h.scores.FindRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	summary := &FocusSummary{From: from, To: to, Days: days}
	for _, d := range days {
		summary.ProductiveSeconds += d.ProductiveSeconds
		summary.NeutralSeconds += d.NeutralSeconds
		summary.DistractingSeconds += d.DistractingSeconds
		summary.XPEarned += d.XPEarned
		if d.IsProductive {
			summary.ProductiveDays++
		}
	}
	summary.FocusScore = domain.FocusScore(summary.ProductiveSeconds, summary.NeutralSeconds, summary.DistractingSeconds)
	return summary, nil
}

// WeekScoreQuery asks for the week score as of Day.
type WeekScoreQuery struct {
	Day time.Time
}

// WeekScoreHandler handles week score queries.
type WeekScoreHandler struct {
	scores domain.DailyScoreRepository
}

// NewWeekScoreHandler creates a new week score handler.
func NewWeekScoreHandler(scores domain.DailyScoreRepository) *WeekScoreHandler {
	return &WeekScoreHandler{scores: scores}
}

// Handle returns the mean score of the scored days from Monday through Day.
func (h *WeekScoreHandler) Handle(ctx context.Context, query WeekScoreQuery) (float64, error) {
	days, err := h.scores.FindRange(ctx, domain.WeekStart(query.Day), domain.StartOfDay(query.Day))
	if err != nil {
		return 0, err
	}
	return domain.WeekScore(days), nil
}
