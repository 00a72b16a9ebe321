package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalApp "github.com/felixgeelhaar/kafeel/internal/app"
	"github.com/felixgeelhaar/kafeel/internal/tracking/domain"
	"github.com/felixgeelhaar/kafeel/pkg/config"
)

func resetFlags() {
	jsonOutput = false
	scoreDate = ""
	scoreFrom = ""
	scoreTo = ""
	achievementsUnlocked = false
	exportFormat = "csv"
	exportOutput = ""
	exportDays = 30
}

// setupTrackedApp wires a SQLite-backed app and records a productive
// morning yesterday.
func setupTrackedApp(t *testing.T) (*App, time.Time) {
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

	app := NewApp(cfg, container.TrackingService, container.InsightsService, container.GamificationService)
	app.SetLocation(container.Location)
	app.SetTracker(container.Tracker, container.Status)
	SetApp(app)
	t.Cleanup(func() { SetApp(nil) })

	yesterday := app.Today().AddDate(0, 0, -1)
	ctx := context.Background()
	editor := domain.App{ID: "com.microsoft.VSCode", DisplayName: "Code"}
	require.NoError(t, container.Tracker.Handle(ctx, domain.ForegroundChanged{App: editor, At: yesterday.Add(9 * time.Hour)}))
	require.NoError(t, container.Tracker.Handle(ctx, domain.ScreenLocked{At: yesterday.Add(10 * time.Hour)}))
	require.NoError(t, container.Tracker.Tick(ctx, time.Now()))
	return app, yesterday
}

func runCmd(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetContext(context.Background())
	cmd.SetOut(&out)
	require.NoError(t, cmd.RunE(cmd, args))
	return out.String()
}

func TestCommands_NoApp(t *testing.T) {
	resetFlags()
	SetApp(nil)

	for _, cmd := range []*cobra.Command{scoreCmd, streakCmd, profileCmd, achievementsCmd, recordsCmd, catchUpCmd, dashboardCmd, exportCmd, healthCmd} {
		t.Run(cmd.Name(), func(t *testing.T) {
			cmd.SetContext(context.Background())
			assert.ErrorIs(t, cmd.RunE(cmd, []string{}), ErrNotInitialized)
		})
	}
}

func TestScoreCmd(t *testing.T) {
	resetFlags()
	_, yesterday := setupTrackedApp(t)

	scoreDate = "yesterday"
	out := runCmd(t, scoreCmd)
	assert.Contains(t, out, "Focus Score "+yesterday.Format(dateLayout))
	assert.Contains(t, out, "100.0")
	assert.Contains(t, out, "Productive:  1h 00m")
	assert.Contains(t, out, "Peak hour:   09:00")

	resetFlags()
	jsonOutput = true
	scoreFrom = yesterday.Format(dateLayout)
	scoreTo = "today"
	out = runCmd(t, scoreCmd)

	var view SummaryView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, yesterday.Format(dateLayout), view.From)
	assert.InDelta(t, 3600, view.ProductiveSeconds, 0.001)
	assert.Equal(t, 1, view.ProductiveDays)
}

func TestScoreCmd_InvalidFlags(t *testing.T) {
	resetFlags()
	setupTrackedApp(t)

	scoreDate = "2026-03-02"
	scoreFrom = "2026-03-01"
	scoreCmd.SetContext(context.Background())
	assert.Error(t, scoreCmd.RunE(scoreCmd, []string{}))

	resetFlags()
	scoreDate = "March 2nd"
	assert.Error(t, scoreCmd.RunE(scoreCmd, []string{}))
}

func TestProgressCmds(t *testing.T) {
	resetFlags()
	setupTrackedApp(t)

	out := runCmd(t, streakCmd)
	assert.Contains(t, out, "Current: 1 days")
	assert.Contains(t, out, "Longest: 1 days")

	out = runCmd(t, profileCmd)
	assert.Contains(t, out, "Level ")
	assert.Contains(t, out, "XP to go")

	achievementsUnlocked = true
	out = runCmd(t, achievementsCmd)
	assert.Contains(t, out, "[x]")
	assert.NotContains(t, out, "[ ]")

	out = runCmd(t, recordsCmd)
	assert.Contains(t, out, "longest_focus_session")
	assert.Contains(t, out, "1h 00m")

	jsonOutput = true
	out = runCmd(t, profileCmd)
	var profile map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &profile))
	assert.Positive(t, profile["total_xp"])
}

func TestCatchUpCmd(t *testing.T) {
	resetFlags()
	setupTrackedApp(t)

	out := runCmd(t, catchUpCmd)
	assert.Equal(t, "Evaluated 0 days.\n", out, "the tracker already closed yesterday")
}

func TestDashboardCmd(t *testing.T) {
	resetFlags()
	setupTrackedApp(t)

	out := runCmd(t, dashboardCmd)
	assert.Contains(t, out, "NOW")
	assert.Contains(t, out, "Tracker idle.")
	assert.Contains(t, out, "Nothing scored yet today.")
	assert.Contains(t, out, "Streak: 1 days")
}

type fixedStatus struct{ status domain.LiveStatus }

func (f fixedStatus) Latest(context.Context) (*domain.LiveStatus, error) { return &f.status, nil }

func TestDashboardCmd_SaveFailure(t *testing.T) {
	resetFlags()
	app, _ := setupTrackedApp(t)

	failedAt := time.Date(2026, 3, 2, 14, 5, 0, 0, time.UTC)
	st := domain.IdleStatus(domain.TrackerIdle, failedAt).WithSaveFailure(errors.New("database is locked"), failedAt)
	app.Status = fixedStatus{status: st}

	out := runCmd(t, dashboardCmd)
	assert.Contains(t, out, "Tracker idle.")
	assert.Contains(t, out, "Could not save progress since 14:05: database is locked")
}

func TestExportCmd(t *testing.T) {
	resetFlags()
	_, yesterday := setupTrackedApp(t)

	exportDays = 2
	out := runCmd(t, exportCmd)
	assert.Contains(t, out, "day,focus_score")
	assert.Contains(t, out, yesterday.Format(dateLayout)+",100.0,3600")

	exportFormat = "ics"
	exportOutput = filepath.Join(t.TempDir(), "focus.ics")
	runCmd(t, exportCmd)
	assert.FileExists(t, exportOutput)

	resetFlags()
	exportFormat = "pdf"
	exportCmd.SetContext(context.Background())
	assert.Error(t, exportCmd.RunE(exportCmd, []string{}))
}

func TestParseDate(t *testing.T) {
	loc := time.UTC
	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"", today, false},
		{"today", today, false},
		{"Yesterday", today.AddDate(0, 0, -1), false},
		{"2026-03-02", time.Date(2026, 3, 2, 0, 0, 0, 0, loc), false},
		{"02.03.2026", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input, loc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "45s", formatSeconds(45))
	assert.Equal(t, "12m", formatSeconds(12*60))
	assert.Equal(t, "2h 05m", formatSeconds(2*3600+5*60))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[##--]", progressBar(0.5, 4))
	assert.Equal(t, "[----]", progressBar(-1, 4))
	assert.Equal(t, "[####]", progressBar(2, 4))
}
