package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/kafeel/adapter/cli"
	internalApp "github.com/felixgeelhaar/kafeel/internal/app"
	trackingDomain "github.com/felixgeelhaar/kafeel/internal/tracking/domain"
	"github.com/felixgeelhaar/kafeel/pkg/config"
)

func newTestApp(t *testing.T) (*cli.App, *internalApp.Container) {
	t.Helper()
	cfg := &config.Config{
		AppEnv:              "test",
		SQLitePath:          filepath.Join(t.TempDir(), "kafeel.db"),
		MinSessionDuration:  2 * time.Second,
		IdleAppID:           "com.apple.loginwindow",
		ProductiveThreshold: 60,
		LevelBaseXP:         100,
		EventBroker:         config.BrokerNone,
	}
	container, err := internalApp.NewContainer(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(container.Close)

	app := cli.NewApp(cfg, container.TrackingService, container.InsightsService, container.GamificationService)
	app.SetLocation(container.Location)
	app.SetTracker(container.Tracker, container.Status)
	return app, container
}

func TestRegisterTools_ListTools(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "test",
		Version: "1.0.0",
		Capabilities: mcp.Capabilities{
			Tools: true,
		},
	})

	require.NoError(t, RegisterTools(srv, ToolDependencies{App: &cli.App{}}))

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)

	names := make(map[string]bool, len(tools))
	for _, tool := range tools {
		if name, ok := tool["name"].(string); ok {
			names[name] = true
		}
	}
	for _, want := range []string{
		"health", "version",
		"focus.summary", "focus.week",
		"streak.get", "profile.get", "achievements.list", "records.list",
		"status.live", "category.list", "category.resolve",
	} {
		assert.True(t, names[want], "%s tool should be registered", want)
	}
}

func TestRegisterTools_RequiresApp(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{Name: "test", Version: "1.0.0"})
	assert.Error(t, RegisterTools(srv, ToolDependencies{}))
	assert.Error(t, RegisterTools(nil, ToolDependencies{App: &cli.App{}}))
}

func TestRegisterResourcesAndPrompts(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "test",
		Version: "1.0.0",
		Capabilities: mcp.Capabilities{
			Resources: true,
			Prompts:   true,
		},
	})
	deps := ToolDependencies{App: &cli.App{}}
	assert.NoError(t, RegisterResources(srv, deps))
	assert.NoError(t, RegisterPrompts(srv, deps))
	assert.Error(t, RegisterResources(nil, deps))
	assert.Error(t, RegisterPrompts(nil, deps))
}

func TestFocusSummary(t *testing.T) {
	app, container := newTestApp(t)
	ctx := context.Background()

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, container.Location)
	editor := trackingDomain.App{ID: "com.microsoft.VSCode", DisplayName: "Code"}
	require.NoError(t, container.Tracker.Handle(ctx, trackingDomain.ForegroundChanged{App: editor, At: day.Add(9 * time.Hour)}))
	require.NoError(t, container.Tracker.Handle(ctx, trackingDomain.ScreenLocked{At: day.Add(10 * time.Hour)}))

	view, err := focusSummary(ctx, app, focusSummaryInput{From: "2026-03-02"})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", view.From)
	assert.Equal(t, "2026-03-02", view.To)
	assert.InDelta(t, 3600, view.ProductiveSeconds, 0.001)
	assert.InDelta(t, 100, view.FocusScore, 0.001)
	require.Len(t, view.Days, 1)

	_, err = focusSummary(ctx, app, focusSummaryInput{From: "03/02/2026"})
	assert.Error(t, err)

	_, err = focusSummary(ctx, nil, focusSummaryInput{})
	assert.ErrorIs(t, err, errNoService)
}

func TestWeekScore(t *testing.T) {
	app, _ := newTestApp(t)

	// Wednesday 2026-03-04 belongs to the week starting Monday 2026-03-02.
	week, err := weekScore(context.Background(), app, focusWeekInput{Date: "2026-03-04"})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", week.WeekStart)
	assert.Zero(t, week.Score)
}

func TestLiveStatus(t *testing.T) {
	app, container := newTestApp(t)
	ctx := context.Background()

	st, err := liveStatus(ctx, app)
	require.NoError(t, err)
	assert.Equal(t, trackingDomain.TrackerStopped, st.State)

	now := time.Now()
	require.NoError(t, container.Tracker.Handle(ctx, trackingDomain.ForegroundChanged{
		App: trackingDomain.App{ID: "com.spotify.client", DisplayName: "Spotify"},
		At:  now,
	}))

	st, err = liveStatus(ctx, app)
	require.NoError(t, err)
	assert.Equal(t, trackingDomain.TrackerActive, st.State)
	assert.Equal(t, "com.spotify.client", st.AppID)

	_, err = liveStatus(ctx, &cli.App{})
	assert.ErrorIs(t, err, errNoService)
}

func TestLiveStatus_SaveFailure(t *testing.T) {
	app, container := newTestApp(t)
	ctx := context.Background()

	failedAt := time.Now().UTC().Truncate(time.Second)
	st := trackingDomain.IdleStatus(trackingDomain.TrackerIdle, failedAt).
		WithSaveFailure(errors.New("database is locked"), failedAt)
	require.NoError(t, container.Status.Publish(ctx, st))

	got, err := liveStatus(ctx, app)
	require.NoError(t, err)
	assert.True(t, got.SaveFailing())
	assert.Equal(t, "database is locked", got.LastError)
	assert.True(t, failedAt.Equal(*got.SaveFailedAt))
}

func TestCategories(t *testing.T) {
	app, _ := newTestApp(t)
	ctx := context.Background()

	res, err := resolveCategory(ctx, app, categoryResolveInput{AppID: "com.microsoft.VSCode"})
	require.NoError(t, err)
	assert.Equal(t, "productive", res.Category)
	assert.Equal(t, 1.0, res.Weight)
	assert.Equal(t, "mapping", res.Source)

	res, err = resolveCategory(ctx, app, categoryResolveInput{AppID: "org.example.unknown"})
	require.NoError(t, err)
	assert.Equal(t, "neutral", res.Category)
	assert.Equal(t, "fallback", res.Source)

	productive, err := listCategories(ctx, app, categoryListInput{Category: "productive"})
	require.NoError(t, err)
	require.NotEmpty(t, productive)
	for _, c := range productive {
		assert.Equal(t, "productive", c.Category)
	}

	custom, err := listCategories(ctx, app, categoryListInput{CustomOnly: true})
	require.NoError(t, err)
	assert.Empty(t, custom)

	_, err = listCategories(ctx, app, categoryListInput{Category: "fun"})
	assert.Error(t, err)
}
