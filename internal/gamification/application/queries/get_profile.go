package queries

import (
	"context"

	"github.com/felixgeelhaar/kafeel/internal/gamification/domain"
)

// ProfileView is the read model of the user profile.
type ProfileView struct {
	TotalXP   int64       `json:"total_xp"`
	Level     int         `json:"level"`
	Tier      domain.Tier `json:"tier"`
	Progress  float64     `json:"progress"`
	XPToNext  int64       `json:"xp_to_next"`
	NextLevel int64       `json:"next_level_xp"`
}

// GetProfileHandler handles profile queries.
type GetProfileHandler struct {
	profiles domain.ProfileRepository
	curve    domain.Curve
}

// NewGetProfileHandler creates a new get profile handler.
func NewGetProfileHandler(profiles domain.ProfileRepository, curve domain.Curve) *GetProfileHandler {
	return &GetProfileHandler{profiles: profiles, curve: curve}
}

// Handle returns the profile with its derived level fields.
func (h *GetProfileHandler) Handle(ctx context.Context) (*ProfileView, error) {
	p, err := h.profiles.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	level := h.curve.Level(p.TotalXP)
	return &ProfileView{
		TotalXP:   p.TotalXP,
		Level:     level,
		Tier:      domain.TierFor(level),
		Progress:  h.curve.Progress(p.TotalXP),
		XPToNext:  h.curve.XPToNext(p.TotalXP),
		NextLevel: h.curve.Threshold(level + 1),
	}, nil
}
