package mcp

import (
	"github.com/felixgeelhaar/kafeel/adapter/cli"
	"github.com/felixgeelhaar/kafeel/internal/app"
)

// NewCLIApp creates a CLI application instance backed by the provided container.
func NewCLIApp(container *app.Container) *cli.App {
	cliApp := cli.NewApp(
		container.Config,
		container.TrackingService,
		container.InsightsService,
		container.GamificationService,
	)

	cliApp.SetLocation(container.Location)
	if container.Tracker != nil {
		cliApp.SetTracker(container.Tracker, container.Status)
	}
	if container.Metrics != nil {
		cliApp.SetMetricsHandler(container.Metrics.Handler())
	}

	return cliApp
}
