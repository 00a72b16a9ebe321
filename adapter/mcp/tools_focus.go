package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/kafeel/adapter/cli"
	"github.com/felixgeelhaar/kafeel/internal/insights/application/queries"
)

type focusSummaryInput struct {
	From string `json:"from,omitempty"` // YYYY-MM-DD, defaults to today
	To   string `json:"to,omitempty"`   // YYYY-MM-DD, defaults to from
}

type focusWeekInput struct {
	Date string `json:"date,omitempty"` // any day of the week, defaults to today
}

// WeekScoreDTO is the week score of the ISO week containing Day.
type WeekScoreDTO struct {
	Day       string  `json:"day"`
	WeekStart string  `json:"week_start"`
	Score     float64 `json:"score"`
}

func registerFocusTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("focus.summary").
		Description("Get the Focus Score and productive, neutral and distracting time for a day or an inclusive date range").
		Handler(func(ctx context.Context, input focusSummaryInput) (*cli.SummaryView, error) {
			return focusSummary(ctx, app, input)
		})

	srv.Tool("focus.week").
		Description("Get the week score: the mean Focus Score of scored days in the ISO week, up to the given day").
		Handler(func(ctx context.Context, input focusWeekInput) (*WeekScoreDTO, error) {
			return weekScore(ctx, app, input)
		})

	return nil
}

func focusSummary(ctx context.Context, app *cli.App, input focusSummaryInput) (*cli.SummaryView, error) {
	if app == nil || app.InsightsService == nil {
		return nil, errNoService
	}
	from, err := parseDay(app, input.From, app.Today())
	if err != nil {
		return nil, err
	}
	to, err := parseDay(app, input.To, from)
	if err != nil {
		return nil, err
	}

	summary, err := app.InsightsService.FocusSummary(ctx, queries.FocusSummaryQuery{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("failed to load focus summary: %w", err)
	}
	view := cli.NewSummaryView(summary)
	return &view, nil
}

func weekScore(ctx context.Context, app *cli.App, input focusWeekInput) (*WeekScoreDTO, error) {
	if app == nil || app.InsightsService == nil {
		return nil, errNoService
	}
	day, err := parseDay(app, input.Date, app.Today())
	if err != nil {
		return nil, err
	}

	score, err := app.InsightsService.WeekScore(ctx, queries.WeekScoreQuery{Day: day})
	if err != nil {
		return nil, fmt.Errorf("failed to load week score: %w", err)
	}

	offset := (int(day.Weekday()) + 6) % 7
	return &WeekScoreDTO{
		Day:       day.Format(dateLayout),
		WeekStart: day.AddDate(0, 0, -offset).Format(dateLayout),
		Score:     score,
	}, nil
}
