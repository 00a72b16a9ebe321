package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/kafeel/internal/gamification/domain"
)

// RecordView is the read model of a personal record.
type RecordView struct {
	Category         domain.RecordCategory `json:"category"`
	Value            float64               `json:"value"`
	PreviousValue    *float64              `json:"previous_value,omitempty"`
	ImprovementCount int                   `json:"improvement_count"`
	AchievedAt       *time.Time            `json:"achieved_at,omitempty"`
	Detail           string                `json:"detail,omitempty"`
}

// ListRecordsHandler handles personal record queries.
type ListRecordsHandler struct {
	records domain.RecordRepository
}

// NewListRecordsHandler creates a new list records handler.
func NewListRecordsHandler(records domain.RecordRepository) *ListRecordsHandler {
	return &ListRecordsHandler{records: records}
}

// Handle returns one entry per record category; categories never observed
// have a zero value.
func (h *ListRecordsHandler) Handle(ctx context.Context) ([]RecordView, error) {
	stored, err := h.records.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	byCategory := make(map[domain.RecordCategory]*domain.PersonalRecord, len(stored))
	for _, r := range stored {
		byCategory[r.Category] = r
	}

	categories := domain.RecordCategories()
	views := make([]RecordView, 0, len(categories))
	for _, c := range categories {
		view := RecordView{Category: c}
		if r, ok := byCategory[c]; ok {
			view.Value = r.Value
			view.PreviousValue = r.PreviousValue
			view.ImprovementCount = r.ImprovementCount
			view.AchievedAt = r.AchievedAt
			view.Detail = r.Detail
		}
		views = append(views, view)
	}
	return views, nil
}
