package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/kafeel/internal/gamification/application/commands"
	"github.com/felixgeelhaar/kafeel/internal/gamification/application/queries"
	"github.com/felixgeelhaar/kafeel/internal/gamification/domain"
)

var achievementsUnlocked bool

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show the productive-day streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		view, err := app.GamificationService.Streak(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load streak: %w", err)
		}
		if JSONOutput() {
			return writeJSON(cmd.OutOrStdout(), view)
		}

		out := cmd.OutOrStdout()
		heading(cmd, "Streak")
		fmt.Fprintf(out, "    Current: %d days", view.CurrentDays)
		if !view.IsActive {
			fmt.Fprint(out, " (inactive)")
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "    Longest: %d days\n", view.LongestDays)
		fmt.Fprintf(out, "    Shields: %d\n", view.Shields)
		fmt.Fprintf(out, "    Started: %s\n", formatDate(view.StartDate))
		fmt.Fprintf(out, "    Last productive day: %s\n", formatDate(view.LastProductiveDate))
		if view.NextMilestone > 0 {
			fmt.Fprintf(out, "    Next milestone: %d days (%d to go)\n", view.NextMilestone, view.NextMilestone-view.CurrentDays)
		}
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:     "profile",
	Aliases: []string{"level", "xp"},
	Short:   "Show XP, level and tier",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		view, err := app.GamificationService.Profile(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		if JSONOutput() {
			return writeJSON(cmd.OutOrStdout(), view)
		}

		out := cmd.OutOrStdout()
		heading(cmd, "Profile")
		fmt.Fprintf(out, "    Level %d %s\n", view.Level, view.Tier)
		fmt.Fprintf(out, "    XP:    %d\n", view.TotalXP)
		fmt.Fprintf(out, "    Next:  %s %d XP to go\n", progressBar(view.Progress, 20), view.XPToNext)
		return nil
	},
}

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List achievements",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		views, err := app.GamificationService.Achievements(cmd.Context(), queries.ListAchievementsQuery{
			UnlockedOnly: achievementsUnlocked,
		})
		if err != nil {
			return fmt.Errorf("failed to list achievements: %w", err)
		}
		if JSONOutput() {
			return writeJSON(cmd.OutOrStdout(), views)
		}

		out := cmd.OutOrStdout()
		heading(cmd, "Achievements")
		if len(views) == 0 {
			fmt.Fprintln(out, "    Nothing unlocked yet.")
			return nil
		}
		unlocked := 0
		for _, a := range views {
			mark := "[ ]"
			when := ""
			if a.Unlocked {
				mark = "[x]"
				unlocked++
				if a.UnlockedAt != nil {
					when = " on " + a.UnlockedAt.Format(dateLayout)
				}
			}
			fmt.Fprintf(out, "    %s %-22s %4d XP  %s%s\n", mark, a.Name, a.XPReward, a.Description, when)
		}
		fmt.Fprintf(out, "\n    %d of %d unlocked\n", unlocked, len(views))
		return nil
	},
}

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Show personal records",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		views, err := app.GamificationService.Records(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load records: %w", err)
		}
		if JSONOutput() {
			return writeJSON(cmd.OutOrStdout(), views)
		}

		out := cmd.OutOrStdout()
		heading(cmd, "Personal Records")
		for _, r := range views {
			value := formatRecordValue(r.Category, r.Value)
			if r.AchievedAt == nil {
				value = "-"
			}
			fmt.Fprintf(out, "    %-22s %12s  %s\n", r.Category, value, formatDate(r.AchievedAt))
		}
		return nil
	},
}

var catchUpCmd = &cobra.Command{
	Use:   "catch-up",
	Short: "Evaluate finished days that were never closed",
	Long: `Evaluate every finished day since the last evaluated one.

Days end while the tracker is not running; catch-up scores them,
advances or breaks the streak and checks achievements and records.
The tracker does this on start as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		results, err := app.GamificationService.CatchUp(cmd.Context(), commands.CatchUpCommand{Now: time.Now()})
		if err != nil {
			return fmt.Errorf("catch-up stopped after %d days: %w", len(results), err)
		}

		if JSONOutput() {
			return writeJSON(cmd.OutOrStdout(), map[string]int{"evaluated": len(results)})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Evaluated %d days.\n", len(results))
		return nil
	},
}

func formatRecordValue(category domain.RecordCategory, value float64) string {
	switch category {
	case domain.RecordLongestFocusSession:
		return formatSeconds(value)
	case domain.RecordLongestStreak:
		return fmt.Sprintf("%d days", int(value))
	case domain.RecordHighestXPDay:
		return fmt.Sprintf("%d XP", int64(value))
	default:
		return fmt.Sprintf("%.1f", value)
	}
}

func init() {
	achievementsCmd.Flags().BoolVar(&achievementsUnlocked, "unlocked", false, "only show unlocked achievements")

	rootCmd.AddCommand(streakCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(achievementsCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(catchUpCmd)
}
