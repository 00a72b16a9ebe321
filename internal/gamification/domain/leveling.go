package domain

import (
	"math"
	"time"
)

// DefaultBaseXP is the XP needed to go from level 1 to level 2.
const DefaultBaseXP = 100

// Tier is a named band of levels.
type Tier string

const (
	TierApprentice Tier = "Apprentice"
	TierJourneyman Tier = "Journeyman"
	TierExpert     Tier = "Expert"
	TierMaster     Tier = "Master"
)

// TierFor returns the band of a level.
func TierFor(level int) Tier {
	switch {
	case level <= 10:
		return TierApprentice
	case level <= 25:
		return TierJourneyman
	case level <= 50:
		return TierExpert
	default:
		return TierMaster
	}
}

// Curve maps total XP to levels. Reaching level L takes BaseXP*(L-1)*L/2
// XP in total, so each level costs BaseXP more than the one before.
type Curve struct {
	BaseXP int64
}

// NewCurve creates a curve. A non-positive base uses DefaultBaseXP.
func NewCurve(baseXP int64) Curve {
	if baseXP <= 0 {
		baseXP = DefaultBaseXP
	}
	return Curve{BaseXP: baseXP}
}

// Threshold returns the total XP at which level starts.
func (c Curve) Threshold(level int) int64 {
	if level <= 1 {
		return 0
	}
	l := int64(level)
	return c.base() * (l - 1) * l / 2
}

// Level returns the level reached with totalXP. Levels start at 1.
func (c Curve) Level(totalXP int64) int {
	if totalXP <= 0 {
		return 1
	}
	// Solve base*(L-1)*L/2 <= xp for L, then correct rounding.
	estimate := int((1 + math.Sqrt(1+8*float64(totalXP)/float64(c.base()))) / 2)
	if estimate < 1 {
		estimate = 1
	}
	for estimate > 1 && c.Threshold(estimate) > totalXP {
		estimate--
	}
	for c.Threshold(estimate+1) <= totalXP {
		estimate++
	}
	return estimate
}

// Progress returns the fraction of the current level completed, in [0, 1).
func (c Curve) Progress(totalXP int64) float64 {
	if totalXP < 0 {
		totalXP = 0
	}
	level := c.Level(totalXP)
	lo, hi := c.Threshold(level), c.Threshold(level+1)
	p := float64(totalXP-lo) / float64(hi-lo)
	if p >= 1 {
		p = math.Nextafter(1, 0)
	}
	return p
}

// XPToNext returns the XP still needed for the next level.
func (c Curve) XPToNext(totalXP int64) int64 {
	if totalXP < 0 {
		totalXP = 0
	}
	return c.Threshold(c.Level(totalXP)+1) - totalXP
}

func (c Curve) base() int64 {
	if c.BaseXP <= 0 {
		return DefaultBaseXP
	}
	return c.BaseXP
}

// UserProfile holds the accumulated XP. There is one per user; level and
// tier are derived from TotalXP through a Curve.
type UserProfile struct {
	TotalXP   int64
	UpdatedAt time.Time
}

// NewUserProfile creates a profile without XP.
func NewUserProfile() *UserProfile {
	return &UserProfile{UpdatedAt: time.Now()}
}

// Grant adds XP. Non-positive amounts are ignored so TotalXP never
// decreases. It returns the levels before and after the grant.
func (p *UserProfile) Grant(xp int64, curve Curve) (before, after int) {
	before = curve.Level(p.TotalXP)
	if xp <= 0 {
		return before, before
	}
	p.TotalXP += xp
	p.UpdatedAt = time.Now()
	return before, curve.Level(p.TotalXP)
}

// Level returns the current level.
func (p *UserProfile) Level(curve Curve) int {
	return curve.Level(p.TotalXP)
}

// Tier returns the current tier.
func (p *UserProfile) Tier(curve Curve) Tier {
	return TierFor(p.Level(curve))
}
