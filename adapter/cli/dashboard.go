package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/kafeel/internal/insights/application/queries"
)

var dashboardCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's dashboard",
	Long: `Display a combined view of the current day:
- what the tracker is doing right now
- today's Focus Score
- streak and level

Examples:
  kafeel today`,
	Aliases: []string{"dashboard", "dash", "now"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		today := app.Today()
		fmt.Fprintf(out, "\n  %s\n", today.Format("Monday, January 2, 2006"))
		fmt.Fprintln(out, strings.Repeat("=", 50))

		showLiveStatus(cmd, app)
		showTodayScore(cmd, app, today)
		showProgress(cmd, app)

		fmt.Fprintln(out)
		return nil
	},
}

func showLiveStatus(cmd *cobra.Command, app *App) {
	if app.Status == nil {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\n  NOW")
	fmt.Fprintln(out, strings.Repeat("-", 50))

	st, err := app.Status.Latest(cmd.Context())
	if err != nil || st == nil {
		fmt.Fprintln(out, "    Tracker not running.")
		return
	}
	if st.AppID == "" || st.Since == nil {
		fmt.Fprintf(out, "    Tracker %s.\n", st.State)
	} else {
		fmt.Fprintf(out, "    %s (%s) for %s\n", st.DisplayName, st.Category,
			formatSeconds(time.Since(*st.Since).Seconds()))
	}
	if st.SaveFailing() {
		fmt.Fprintf(out, "    ! Could not save progress since %s: %s\n",
			st.SaveFailedAt.Format("15:04"), st.LastError)
	}
}

func showTodayScore(cmd *cobra.Command, app *App, today time.Time) {
	out := cmd.OutOrStdout()
	summary, err := app.InsightsService.FocusSummary(cmd.Context(), queries.FocusSummaryQuery{From: today, To: today})
	if err != nil {
		return
	}

	fmt.Fprintln(out, "\n  FOCUS")
	fmt.Fprintln(out, strings.Repeat("-", 50))
	if summary.TotalSeconds() == 0 {
		fmt.Fprintln(out, "    Nothing scored yet today.")
		return
	}
	fmt.Fprintf(out, "    Score %5.1f %s\n", summary.FocusScore, progressBar(summary.FocusScore/100, 20))
	fmt.Fprintf(out, "    %s productive | %s neutral | %s distracting\n",
		formatSeconds(summary.ProductiveSeconds),
		formatSeconds(summary.NeutralSeconds),
		formatSeconds(summary.DistractingSeconds))
}

func showProgress(cmd *cobra.Command, app *App) {
	out := cmd.OutOrStdout()
	streak, err := app.GamificationService.Streak(cmd.Context())
	if err != nil {
		return
	}
	profile, err := app.GamificationService.Profile(cmd.Context())
	if err != nil {
		return
	}

	fmt.Fprintln(out, "\n  PROGRESS")
	fmt.Fprintln(out, strings.Repeat("-", 50))
	fmt.Fprintf(out, "    Streak: %d days (best %d, %d shields)\n", streak.CurrentDays, streak.LongestDays, streak.Shields)
	fmt.Fprintf(out, "    Level %d %s, %d XP to next\n", profile.Level, profile.Tier, profile.XPToNext)
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
