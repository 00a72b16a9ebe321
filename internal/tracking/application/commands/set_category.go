package commands

import (
	"context"

	"github.com/felixgeelhaar/kafeel/internal/tracking/domain"
)

// SetCategoryCommand assigns a category to an application.
type SetCategoryCommand struct {
	AppID    string
	Category string
}

// SetCategoryHandler handles set category commands.
type SetCategoryHandler struct {
	repo domain.CategoryRepository
}

// NewSetCategoryHandler creates a new set category handler.
func NewSetCategoryHandler(repo domain.CategoryRepository) *SetCategoryHandler {
	return &SetCategoryHandler{repo: repo}
}

// Handle stores the mapping as a user override.
func (h *SetCategoryHandler) Handle(ctx context.Context, cmd SetCategoryCommand) (*domain.CategoryMapping, error) {
	category, err := domain.ParseCategory(cmd.Category)
	if err != nil {
		return nil, err
	}

	mapping, err := domain.NewCategoryMapping(cmd.AppID, category, true)
	if err != nil {
		return nil, err
	}

	if err := h.repo.Save(ctx, mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}
