package queries

import (
	"context"

	"github.com/felixgeelhaar/kafeel/internal/tracking/domain"
)

// ListCategoriesQuery filters the mapping list.
type ListCategoriesQuery struct {
	// Category limits the result to one category when set.
	Category string

	// CustomOnly limits the result to user overrides.
	CustomOnly bool
}

// ListCategoriesHandler handles list categories queries.
type ListCategoriesHandler struct {
	repo domain.CategoryRepository
}

// NewListCategoriesHandler creates a new list categories handler.
func NewListCategoriesHandler(repo domain.CategoryRepository) *ListCategoriesHandler {
	return &ListCategoriesHandler{repo: repo}
}

// Handle returns the matching mappings ordered by app id.
func (h *ListCategoriesHandler) Handle(ctx context.Context, query ListCategoriesQuery) ([]*domain.CategoryMapping, error) {
	var filter domain.Category
	if query.Category != "" {
		c, err := domain.ParseCategory(query.Category)
		if err != nil {
			return nil, err
		}
		filter = c
	}

	all, err := h.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.CategoryMapping, 0, len(all))
	for _, m := range all {
		if filter != "" && m.Category != filter {
			continue
		}
		if query.CustomOnly && !m.IsCustom {
			continue
		}
		result = append(result, m)
	}
	return result, nil
}
