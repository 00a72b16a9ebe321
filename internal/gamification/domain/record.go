package domain

import "time"

// RecordCategory names a tracked personal best.
type RecordCategory string

const (
	RecordBestDayScore        RecordCategory = "best_day_score"
	RecordLongestFocusSession RecordCategory = "longest_focus_session"
	RecordLongestStreak       RecordCategory = "longest_streak"
	RecordHighestXPDay        RecordCategory = "highest_xp_day"
	RecordBestWeekScore       RecordCategory = "best_week_score"
)

// RecordCategories returns every tracked category.
func RecordCategories() []RecordCategory {
	return []RecordCategory{
		RecordBestDayScore,
		RecordLongestFocusSession,
		RecordLongestStreak,
		RecordHighestXPDay,
		RecordBestWeekScore,
	}
}

// PersonalRecord is the best value ever observed for a category. Value never
// decreases.
type PersonalRecord struct {
	Category         RecordCategory
	Value            float64
	PreviousValue    *float64
	ImprovementCount int
	AchievedAt       *time.Time
	Detail           string
}

// NewPersonalRecord creates an empty record.
func NewPersonalRecord(category RecordCategory) *PersonalRecord {
	return &PersonalRecord{Category: category}
}

// Observe records value if it strictly beats the current best and reports
// whether it did. Ties and lower values leave the record unchanged.
func (r *PersonalRecord) Observe(value float64, at time.Time, detail string) bool {
	if !(value > r.Value) {
		return false
	}
	previous := r.Value
	r.PreviousValue = &previous
	r.Value = value
	r.ImprovementCount++
	r.AchievedAt = &at
	r.Detail = detail
	return true
}
