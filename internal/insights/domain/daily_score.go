package domain

import (
	"math"
	"time"
)

const (
	// DefaultProductiveThreshold is the lowest score of a productive day.
	DefaultProductiveThreshold = 60.0

	// XPPerProductiveMinute is granted for every full productive minute.
	XPPerProductiveMinute = 1

	// ProductiveDayBonusXP is granted once a day qualifies as productive.
	ProductiveDayBonusXP = 50
)

// DailyScore is the scored summary of one local calendar day.
type DailyScore struct {
	Day                time.Time
	FocusScore         float64
	ProductiveSeconds  float64
	NeutralSeconds     float64
	DistractingSeconds float64
	XPEarned           int64
	IsProductive       bool
	PeakHour           *int
	UpdatedAt          time.Time
}

// NewDailyScore creates an empty score for the day containing t.
func NewDailyScore(t time.Time) *DailyScore {
	return &DailyScore{
		Day:       StartOfDay(t),
		UpdatedAt: time.Now(),
	}
}

// StartOfDay returns local midnight of the day containing t, in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// TotalSeconds returns all tracked seconds.
func (d *DailyScore) TotalSeconds() float64 {
	return d.ProductiveSeconds + d.NeutralSeconds + d.DistractingSeconds
}

// Apply replaces the day's figures with a freshly computed breakdown and
// returns the XP gained. XPEarned never decreases, so recomputing a day
// after a mapping change cannot take XP back.
func (d *DailyScore) Apply(b Breakdown, threshold float64, now time.Time) int64 {
	d.ProductiveSeconds = b.ProductiveSeconds
	d.NeutralSeconds = b.NeutralSeconds
	d.DistractingSeconds = b.DistractingSeconds
	d.FocusScore = b.Score()
	d.IsProductive = b.Total() > 0 && d.FocusScore >= threshold

	d.PeakHour = nil
	if hour, ok := b.PeakHour(); ok {
		d.PeakHour = &hour
	}

	var gained int64
	if xp := DailyXP(d.ProductiveSeconds, d.IsProductive); xp > d.XPEarned {
		gained = xp - d.XPEarned
		d.XPEarned = xp
	}
	d.UpdatedAt = now
	return gained
}

// DailyXP returns the XP a day is worth.
func DailyXP(productiveSeconds float64, productiveDay bool) int64 {
	xp := int64(math.Floor(nonNegative(productiveSeconds)/60)) * XPPerProductiveMinute
	if productiveDay {
		xp += ProductiveDayBonusXP
	}
	return xp
}

// WeekStart returns the Monday of the ISO week containing day.
func WeekStart(day time.Time) time.Time {
	day = StartOfDay(day)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekScore is the mean Focus Score of the given days. Days without a score
// are not counted; no days scores 0.
func WeekScore(days []*DailyScore) float64 {
	if len(days) == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range days {
		sum += d.FocusScore
	}
	return sum / float64(len(days))
}
