package application

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/kafeel/internal/tracking/domain"
)

// CategoryResolver classifies applications using the stored mappings.
type CategoryResolver struct {
	repo domain.CategoryRepository
}

// NewCategoryResolver creates a resolver over repo.
func NewCategoryResolver(repo domain.CategoryRepository) *CategoryResolver {
	return &CategoryResolver{repo: repo}
}

// Resolve returns the category of appID. Unmapped apps resolve to neutral;
// only store failures are returned as errors.
func (r *CategoryResolver) Resolve(ctx context.Context, appID string) (domain.Resolution, error) {
	m, err := r.repo.FindByAppID(ctx, appID)
	if err != nil {
		return domain.Resolution{}, fmt.Errorf("resolve category: %w", err)
	}
	if m == nil || !m.Category.IsValid() {
		return domain.FallbackResolution(appID), nil
	}
	return domain.MappedResolution(m), nil
}

// Snapshot loads every mapping once and resolves from memory. Scoring a day
// resolves many sessions against the same mapping set.
func (r *CategoryResolver) Snapshot(ctx context.Context) (domain.CategoryIndex, error) {
	all, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	byApp := make(map[string]*domain.CategoryMapping, len(all))
	for _, m := range all {
		byApp[m.AppID] = m
	}
	return &MappingSnapshot{byApp: byApp}, nil
}

// MappingSnapshot is an immutable view of the category mappings.
type MappingSnapshot struct {
	byApp map[string]*domain.CategoryMapping
}

// Resolve classifies appID against the snapshot.
func (s *MappingSnapshot) Resolve(appID string) domain.Resolution {
	m, ok := s.byApp[appID]
	if !ok || !m.Category.IsValid() {
		return domain.FallbackResolution(appID)
	}
	return domain.MappedResolution(m)
}
