package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/kafeel/internal/gamification/domain"
)

// StreakView is the read model of the streak.
type StreakView struct {
	CurrentDays        int        `json:"current_days"`
	LongestDays        int        `json:"longest_days"`
	Shields            int        `json:"shields"`
	IsActive           bool       `json:"is_active"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	LastProductiveDate *time.Time `json:"last_productive_date,omitempty"`
	EvaluatedThrough   *time.Time `json:"evaluated_through,omitempty"`
	Milestones         []int      `json:"milestones"`
	NextMilestone      int        `json:"next_milestone,omitempty"`
}

var milestoneDays = []int{7, 30, 100}

// GetStreakHandler handles streak queries.
type GetStreakHandler struct {
	streaks domain.StreakRepository
}

// NewGetStreakHandler creates a new get streak handler.
func NewGetStreakHandler(streaks domain.StreakRepository) *GetStreakHandler {
	return &GetStreakHandler{streaks: streaks}
}

// Handle returns the current streak.
func (h *GetStreakHandler) Handle(ctx context.Context) (*StreakView, error) {
	s, err := h.streaks.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	view := &StreakView{
		CurrentDays:        s.CurrentDays,
		LongestDays:        s.LongestDays,
		Shields:            s.Shields,
		IsActive:           s.IsActive,
		StartDate:          s.StartDate,
		LastProductiveDate: s.LastProductiveDate,
		EvaluatedThrough:   s.EvaluatedThrough,
		Milestones:         []int{},
	}
	for _, days := range milestoneDays {
		if s.MilestoneReached(days) {
			view.Milestones = append(view.Milestones, days)
		} else if view.NextMilestone == 0 {
			view.NextMilestone = days
		}
	}
	return view, nil
}
