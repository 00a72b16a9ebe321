package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurve_Threshold(t *testing.T) {
	c := NewCurve(0)

	assert.Equal(t, int64(0), c.Threshold(1))
	assert.Equal(t, int64(100), c.Threshold(2))
	assert.Equal(t, int64(300), c.Threshold(3))
	assert.Equal(t, int64(4500), c.Threshold(10))

	for l := 1; l < 200; l++ {
		assert.Less(t, c.Threshold(l), c.Threshold(l+1))
	}
}

func TestCurve_Level(t *testing.T) {
	c := NewCurve(DefaultBaseXP)

	tests := []struct {
		xp    int64
		level int
	}{
		{-5, 1},
		{0, 1},
		{99, 1},
		{100, 2},
		{299, 2},
		{300, 3},
		{4499, 9},
		{4500, 10},
		{1_000_000, 141},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, c.Level(tt.xp), "xp=%d", tt.xp)
	}
}

func TestCurve_LevelMatchesThresholds(t *testing.T) {
	c := NewCurve(250)
	for xp := int64(0); xp < 50_000; xp += 37 {
		l := c.Level(xp)
		assert.LessOrEqual(t, c.Threshold(l), xp)
		assert.Greater(t, c.Threshold(l+1), xp)
	}
}

func TestCurve_Progress(t *testing.T) {
	c := NewCurve(DefaultBaseXP)

	assert.Zero(t, c.Progress(0))
	assert.InDelta(t, 0.5, c.Progress(50), 1e-9)
	assert.Zero(t, c.Progress(100))
	assert.InDelta(t, 0.5, c.Progress(200), 1e-9)

	for xp := int64(0); xp < 10_000; xp += 13 {
		p := c.Progress(xp)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.Less(t, p, 1.0)
	}

	assert.Equal(t, int64(100), c.XPToNext(0))
	assert.Equal(t, int64(1), c.XPToNext(299))
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, TierApprentice, TierFor(1))
	assert.Equal(t, TierApprentice, TierFor(10))
	assert.Equal(t, TierJourneyman, TierFor(11))
	assert.Equal(t, TierJourneyman, TierFor(25))
	assert.Equal(t, TierExpert, TierFor(26))
	assert.Equal(t, TierExpert, TierFor(50))
	assert.Equal(t, TierMaster, TierFor(51))
}

func TestUserProfile_Grant(t *testing.T) {
	c := NewCurve(DefaultBaseXP)
	p := NewUserProfile()

	before, after := p.Grant(350, c)
	assert.Equal(t, 1, before)
	assert.Equal(t, 3, after)
	assert.Equal(t, int64(350), p.TotalXP)

	before, after = p.Grant(-100, c)
	assert.Equal(t, 3, before)
	assert.Equal(t, 3, after)
	assert.Equal(t, int64(350), p.TotalXP)

	assert.Equal(t, TierApprentice, p.Tier(c))
}
