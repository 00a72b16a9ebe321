package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/kafeel/internal/gamification/domain"
)

// ListAchievementsQuery filters the achievement list.
type ListAchievementsQuery struct {
	UnlockedOnly bool
}

// AchievementView joins a catalog entry with its unlock state.
type AchievementView struct {
	Type        domain.AchievementType `json:"type"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	XPReward    int64                  `json:"xp_reward"`
	Shields     int                    `json:"shields,omitempty"`
	Unlocked    bool                   `json:"unlocked"`
	UnlockedAt  *time.Time             `json:"unlocked_at,omitempty"`
}

// ListAchievementsHandler handles achievement queries.
type ListAchievementsHandler struct {
	achievements domain.AchievementRepository
	catalog      *domain.Catalog
}

// NewListAchievementsHandler creates a new list achievements handler.
func NewListAchievementsHandler(achievements domain.AchievementRepository, catalog *domain.Catalog) *ListAchievementsHandler {
	return &ListAchievementsHandler{achievements: achievements, catalog: catalog}
}

// Handle returns achievements in catalog order. Stored rows for types no
// longer in the catalog are ignored.
func (h *ListAchievementsHandler) Handle(ctx context.Context, query ListAchievementsQuery) ([]AchievementView, error) {
	stored, err := h.achievements.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	byType := make(map[domain.AchievementType]*domain.Achievement, len(stored))
	for _, a := range stored {
		byType[a.Type] = a
	}

	views := make([]AchievementView, 0, len(stored))
	for _, t := range h.catalog.Triggers() {
		view := AchievementView{
			Type:        t.Type,
			Name:        t.Name,
			Description: t.Description,
			XPReward:    t.Reward.XP,
			Shields:     t.Reward.Shields,
		}
		if a, ok := byType[t.Type]; ok {
			view.Unlocked = a.Unlocked
			view.UnlockedAt = a.UnlockedAt
		}
		if query.UnlockedOnly && !view.Unlocked {
			continue
		}
		views = append(views, view)
	}
	return views, nil
}
