package application

import (
	"context"

	sharedApplication "github.com/felixgeelhaar/kafeel/internal/shared/application"
	"github.com/felixgeelhaar/kafeel/internal/tracking/application/commands"
	"github.com/felixgeelhaar/kafeel/internal/tracking/application/queries"
	"github.com/felixgeelhaar/kafeel/internal/tracking/domain"
)

// Service provides a facade over the category handlers.
type Service struct {
	resolver *CategoryResolver

	setCategoryHandler    *commands.SetCategoryHandler
	seedCategoriesHandler *commands.SeedCategoriesHandler

	listCategoriesHandler *queries.ListCategoriesHandler
}

// NewService creates a new tracking service.
func NewService(categories domain.CategoryRepository, uow sharedApplication.UnitOfWork) *Service {
	return &Service{
		resolver: NewCategoryResolver(categories),

		setCategoryHandler:    commands.NewSetCategoryHandler(categories),
		seedCategoriesHandler: commands.NewSeedCategoriesHandler(categories, uow),

		listCategoriesHandler: queries.NewListCategoriesHandler(categories),
	}
}

// Resolver returns the category resolver.
func (s *Service) Resolver() *CategoryResolver {
	return s.resolver
}

// Resolve classifies an application.
func (s *Service) Resolve(ctx context.Context, appID string) (domain.Resolution, error) {
	return s.resolver.Resolve(ctx, appID)
}

// SetCategory stores a user override.
func (s *Service) SetCategory(ctx context.Context, cmd commands.SetCategoryCommand) (*domain.CategoryMapping, error) {
	return s.setCategoryHandler.Handle(ctx, cmd)
}

// SeedCategories loads catalog defaults and override files.
func (s *Service) SeedCategories(ctx context.Context, cmd commands.SeedCategoriesCommand) (commands.SeedCategoriesResult, error) {
	return s.seedCategoriesHandler.Handle(ctx, cmd)
}

// ListCategories lists stored mappings.
func (s *Service) ListCategories(ctx context.Context, query queries.ListCategoriesQuery) ([]*domain.CategoryMapping, error) {
	return s.listCategoriesHandler.Handle(ctx, query)
}
