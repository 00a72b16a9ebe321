package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/kafeel/adapter/cli"
	"github.com/felixgeelhaar/kafeel/internal/tracking/application/queries"
	"github.com/felixgeelhaar/kafeel/internal/tracking/domain"
)

type categoryListInput struct {
	Category   string `json:"category,omitempty"` // productive, neutral or distracting
	CustomOnly bool   `json:"custom_only,omitempty"`
}

type categoryResolveInput struct {
	AppID string `json:"app_id" jsonschema:"required"`
}

// CategoryDTO is one application to category mapping.
type CategoryDTO struct {
	AppID    string  `json:"app_id"`
	Category string  `json:"category"`
	Weight   float64 `json:"weight"`
	IsCustom bool    `json:"is_custom,omitempty"`
	Source   string  `json:"source,omitempty"`
}

func registerTrackingTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("status.live").
		Description("Get what the tracker is doing right now: the foreground application, its category, since when and whether saving progress is failing").
		Handler(func(ctx context.Context, input struct{}) (*domain.LiveStatus, error) {
			return liveStatus(ctx, app)
		})

	srv.Tool("category.list").
		Description("List application category mappings").
		Handler(func(ctx context.Context, input categoryListInput) ([]CategoryDTO, error) {
			return listCategories(ctx, app, input)
		})

	srv.Tool("category.resolve").
		Description("Resolve the category and weight of an application identifier").
		Handler(func(ctx context.Context, input categoryResolveInput) (*CategoryDTO, error) {
			return resolveCategory(ctx, app, input)
		})

	return nil
}

func liveStatus(ctx context.Context, app *cli.App) (*domain.LiveStatus, error) {
	if app == nil || app.Status == nil {
		return nil, errNoService
	}
	st, err := app.Status.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read live status: %w", err)
	}
	if st == nil {
		return &domain.LiveStatus{State: domain.TrackerStopped}, nil
	}
	return st, nil
}

func resolveCategory(ctx context.Context, app *cli.App, input categoryResolveInput) (*CategoryDTO, error) {
	if app == nil || app.TrackingService == nil {
		return nil, errNoService
	}
	res, err := app.TrackingService.Resolve(ctx, input.AppID)
	if err != nil {
		return nil, err
	}
	return &CategoryDTO{
		AppID:    res.AppID,
		Category: string(res.Category),
		Weight:   res.Category.Weight(),
		Source:   res.Source.String(),
	}, nil
}

func listCategories(ctx context.Context, app *cli.App, input categoryListInput) ([]CategoryDTO, error) {
	if app == nil || app.TrackingService == nil {
		return nil, errNoService
	}
	mappings, err := app.TrackingService.ListCategories(ctx, queries.ListCategoriesQuery{
		Category:   input.Category,
		CustomOnly: input.CustomOnly,
	})
	if err != nil {
		return nil, err
	}

	result := make([]CategoryDTO, 0, len(mappings))
	for _, m := range mappings {
		result = append(result, CategoryDTO{
			AppID:    m.AppID,
			Category: string(m.Category),
			Weight:   m.Category.Weight(),
			IsCustom: m.IsCustom,
		})
	}
	return result, nil
}
