package domain

import (
	"time"

	trackingDomain "github.com/felixgeelhaar/kafeel/internal/tracking/domain"
)

// FocusScore weights category seconds into a 0-100 score. No tracked time
// scores 0. Negative inputs are treated as zero.
func FocusScore(productive, neutral, distracting float64) float64 {
	productive = nonNegative(productive)
	neutral = nonNegative(neutral)
	distracting = nonNegative(distracting)

	total := productive + neutral + distracting
	if total == 0 {
		return 0
	}

	weighted := productive*trackingDomain.CategoryProductive.Weight() +
		neutral*trackingDomain.CategoryNeutral.Weight() +
		distracting*trackingDomain.CategoryDistracting.Weight()

	return clamp(weighted/total*100, 0, 100)
}

// ClassifiedSession is a session paired with its resolved category.
type ClassifiedSession struct {
	Session  trackingDomain.ActivitySession
	Category trackingDomain.Category
}

// Breakdown is the time a bucket spent in each category.
type Breakdown struct {
	ProductiveSeconds  float64
	NeutralSeconds     float64
	DistractingSeconds float64

	// HourlyProductive holds productive seconds per local hour of day.
	HourlyProductive [24]float64

	// LongestProductive is the longest productive session in the bucket,
	// measured over its full length.
	LongestProductive time.Duration

	Sessions int
}

// Total returns the tracked seconds.
func (b Breakdown) Total() float64 {
	return b.ProductiveSeconds + b.NeutralSeconds + b.DistractingSeconds
}

// Score returns the Focus Score of the bucket.
func (b Breakdown) Score() float64 {
	return FocusScore(b.ProductiveSeconds, b.NeutralSeconds, b.DistractingSeconds)
}

// PeakHour returns the hour with the most productive seconds. The earliest
// hour wins ties. ok is false when nothing productive was tracked.
func (b Breakdown) PeakHour() (hour int, ok bool) {
	best := 0.0
	for h, secs := range b.HourlyProductive {
		if secs > best {
			best = secs
			hour = h
			ok = true
		}
	}
	return hour, ok
}

// Aggregate sums the part of each session that falls inside [from, to).
// Hours are bucketed in loc.
func Aggregate(sessions []ClassifiedSession, from, to time.Time, loc *time.Location) Breakdown {
	if loc == nil {
		loc = time.Local
	}

	var b Breakdown
	for _, cs := range sessions {
		overlap := cs.Session.Overlap(from, to)
		if overlap <= 0 {
			continue
		}
		b.Sessions++

		secs := overlap.Seconds()
		switch cs.Category {
		case trackingDomain.CategoryProductive:
			b.ProductiveSeconds += secs
			addHourly(&b.HourlyProductive, cs.Session, from, to, loc)
			if d := cs.Session.Duration(); d > b.LongestProductive {
				b.LongestProductive = d
			}
		case trackingDomain.CategoryDistracting:
			b.DistractingSeconds += secs
		default:
			b.NeutralSeconds += secs
		}
	}
	return b
}

// addHourly spreads the clipped session across the hours it covers.
func addHourly(hours *[24]float64, s trackingDomain.ActivitySession, from, to time.Time, loc *time.Location) {
	start := s.Start
	if from.After(start) {
		start = from
	}
	end := s.End
	if to.Before(end) {
		end = to
	}

	for cur := start; cur.Before(end); {
		local := cur.In(loc)
		next := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, loc).Add(time.Hour)
		if next.After(end) {
			next = end
		}
		hours[local.Hour()] += next.Sub(cur).Seconds()
		cur = next
	}
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
