package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/kafeel/adapter/cli"
	"github.com/felixgeelhaar/kafeel/internal/gamification/application/queries"
)

type achievementsInput struct {
	UnlockedOnly bool `json:"unlocked_only,omitempty"`
}

func registerProgressTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("streak.get").
		Description("Get the current and longest productive-day streak, shields and the next milestone").
		Handler(func(ctx context.Context, input struct{}) (*queries.StreakView, error) {
			if err := requireGamification(app); err != nil {
				return nil, err
			}
			return app.GamificationService.Streak(ctx)
		})

	srv.Tool("profile.get").
		Description("Get total XP, level, tier and progress towards the next level").
		Handler(func(ctx context.Context, input struct{}) (*queries.ProfileView, error) {
			if err := requireGamification(app); err != nil {
				return nil, err
			}
			return app.GamificationService.Profile(ctx)
		})

	srv.Tool("achievements.list").
		Description("List achievements with their unlock state").
		Handler(func(ctx context.Context, input achievementsInput) ([]queries.AchievementView, error) {
			if err := requireGamification(app); err != nil {
				return nil, err
			}
			return app.GamificationService.Achievements(ctx, queries.ListAchievementsQuery{
				UnlockedOnly: input.UnlockedOnly,
			})
		})

	srv.Tool("records.list").
		Description("List personal records: best day score, longest focus session, longest streak, highest XP day and best week score").
		Handler(func(ctx context.Context, input struct{}) ([]queries.RecordView, error) {
			if err := requireGamification(app); err != nil {
				return nil, err
			}
			return app.GamificationService.Records(ctx)
		})

	return nil
}

func requireGamification(app *cli.App) error {
	if app == nil || app.GamificationService == nil {
		return errNoService
	}
	return nil
}
