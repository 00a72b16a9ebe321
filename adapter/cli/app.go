package cli

import (
	"context"
	"net/http"
	"time"

	gamificationApp "github.com/felixgeelhaar/kafeel/internal/gamification/application"
	insightsApp "github.com/felixgeelhaar/kafeel/internal/insights/application"
	trackingApp "github.com/felixgeelhaar/kafeel/internal/tracking/application"
	trackingDomain "github.com/felixgeelhaar/kafeel/internal/tracking/domain"
	"github.com/felixgeelhaar/kafeel/pkg/config"
)

// StatusReader returns the tracker's last published status.
type StatusReader interface {
	Latest(ctx context.Context) (*trackingDomain.LiveStatus, error)
}

// App holds the CLI application dependencies.
type App struct {
	Config *config.Config

	// Services
	TrackingService     *trackingApp.Service
	InsightsService     *insightsApp.Service
	GamificationService *gamificationApp.Service

	// Live tracking
	Tracker *trackingApp.Tracker
	Status  StatusReader

	// MetricsHandler serves Prometheus metrics while tracking.
	MetricsHandler http.Handler

	// Location defines local day boundaries.
	Location *time.Location
}

// NewApp creates a new CLI application with the provided services.
func NewApp(
	cfg *config.Config,
	tracking *trackingApp.Service,
	insights *insightsApp.Service,
	gamification *gamificationApp.Service,
) *App {
	return &App{
		Config:              cfg,
		TrackingService:     tracking,
		InsightsService:     insights,
		GamificationService: gamification,
		Location:            time.Local,
	}
}

// SetTracker sets the tracker and the status store it publishes to.
func (a *App) SetTracker(tracker *trackingApp.Tracker, status StatusReader) {
	a.Tracker = tracker
	a.Status = status
}

// SetMetricsHandler sets the Prometheus handler.
func (a *App) SetMetricsHandler(h http.Handler) {
	a.MetricsHandler = h
}

// SetLocation sets the location of local days.
func (a *App) SetLocation(loc *time.Location) {
	if loc != nil {
		a.Location = loc
	}
}

// Today returns local midnight of the current day.
func (a *App) Today() time.Time {
	now := time.Now().In(a.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, a.Location)
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
