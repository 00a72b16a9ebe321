package commands

import (
	"context"

	"github.com/felixgeelhaar/kafeel/internal/shared/application"
	"github.com/felixgeelhaar/kafeel/internal/tracking/domain"
)

// SeedCategoriesCommand loads catalog mappings into the store.
type SeedCategoriesCommand struct {
	// Defaults are stored only for apps without a mapping.
	Defaults []*domain.CategoryMapping

	// Overrides replace whatever is stored.
	Overrides []*domain.CategoryMapping
}

// SeedCategoriesResult reports how many mappings were written.
type SeedCategoriesResult struct {
	Seeded     int
	Overridden int
}

// SeedCategoriesHandler handles seed categories commands.
type SeedCategoriesHandler struct {
	repo domain.CategoryRepository
	uow  application.UnitOfWork
}

// NewSeedCategoriesHandler creates a new seed categories handler.
func NewSeedCategoriesHandler(repo domain.CategoryRepository, uow application.UnitOfWork) *SeedCategoriesHandler {
	return &SeedCategoriesHandler{repo: repo, uow: uow}
}

// Handle writes all mappings in one transaction.
func (h *SeedCategoriesHandler) Handle(ctx context.Context, cmd SeedCategoriesCommand) (SeedCategoriesResult, error) {
	var result SeedCategoriesResult

	err := application.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		for _, m := range cmd.Defaults {
			stored, err := h.repo.SaveIfAbsent(txCtx, m)
			if err != nil {
				return err
			}
			if stored {
				result.Seeded++
			}
		}
		for _, m := range cmd.Overrides {
			if err := h.repo.Save(txCtx, m); err != nil {
				return err
			}
			result.Overridden++
		}
		return nil
	})
	if err != nil {
		return SeedCategoriesResult{}, err
	}
	return result, nil
}
