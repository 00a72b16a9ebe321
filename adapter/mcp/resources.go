package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/kafeel/internal/gamification/application/queries"
)

// RegisterResources registers MCP resources that expose kafeel data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	app := deps.App

	srv.Resource("kafeel://today").
		Name("Today").
		Description("Today's Focus Score and category breakdown").
		MimeType(jsonMimeType).
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			view, err := focusSummary(ctx, app, focusSummaryInput{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, view)
		})

	srv.Resource("kafeel://week").
		Name("This Week").
		Description("Daily scores of the current ISO week").
		MimeType(jsonMimeType).
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil {
				return nil, errNoService
			}
			today := app.Today()
			monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
			view, err := focusSummary(ctx, app, focusSummaryInput{
				From: monday.Format(dateLayout),
				To:   today.Format(dateLayout),
			})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, view)
		})

	srv.Resource("kafeel://progress").
		Name("Progress").
		Description("Level, streak and unlocked achievements").
		MimeType(jsonMimeType).
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if err := requireGamification(app); err != nil {
				return nil, err
			}
			profile, err := app.GamificationService.Profile(ctx)
			if err != nil {
				return nil, err
			}
			streak, err := app.GamificationService.Streak(ctx)
			if err != nil {
				return nil, err
			}
			unlocked, err := app.GamificationService.Achievements(ctx, queries.ListAchievementsQuery{UnlockedOnly: true})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, map[string]any{
				"profile":      profile,
				"streak":       streak,
				"achievements": unlocked,
			})
		})

	srv.Resource("kafeel://records").
		Name("Personal Records").
		Description("Best values ever observed per record category").
		MimeType(jsonMimeType).
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if err := requireGamification(app); err != nil {
				return nil, err
			}
			records, err := app.GamificationService.Records(ctx)
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, records)
		})

	return nil
}
