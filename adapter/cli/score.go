package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/kafeel/internal/insights/application/queries"
)

var (
	scoreDate string
	scoreFrom string
	scoreTo   string
)

// DayView is the JSON form of one scored day.
type DayView struct {
	Day                string  `json:"day"`
	FocusScore         float64 `json:"focus_score"`
	ProductiveSeconds  float64 `json:"productive_seconds"`
	NeutralSeconds     float64 `json:"neutral_seconds"`
	DistractingSeconds float64 `json:"distracting_seconds"`
	XPEarned           int64   `json:"xp_earned"`
	IsProductive       bool    `json:"is_productive"`
	PeakHour           *int    `json:"peak_hour,omitempty"`
}

// SummaryView is the JSON form of a focus summary.
type SummaryView struct {
	From               string    `json:"from"`
	To                 string    `json:"to"`
	FocusScore         float64   `json:"focus_score"`
	ProductiveSeconds  float64   `json:"productive_seconds"`
	NeutralSeconds     float64   `json:"neutral_seconds"`
	DistractingSeconds float64   `json:"distracting_seconds"`
	XPEarned           int64     `json:"xp_earned"`
	ProductiveDays     int       `json:"productive_days"`
	Days               []DayView `json:"days"`
}

// NewSummaryView converts a focus summary into its JSON form.
func NewSummaryView(s *queries.FocusSummary) SummaryView {
	v := SummaryView{
		From:               s.From.Format(dateLayout),
		To:                 s.To.Format(dateLayout),
		FocusScore:         s.FocusScore,
		ProductiveSeconds:  s.ProductiveSeconds,
		NeutralSeconds:     s.NeutralSeconds,
		DistractingSeconds: s.DistractingSeconds,
		XPEarned:           s.XPEarned,
		ProductiveDays:     s.ProductiveDays,
		Days:               make([]DayView, 0, len(s.Days)),
	}
	for _, d := range s.Days {
		v.Days = append(v.Days, DayView{
			Day:                d.Day.Format(dateLayout),
			FocusScore:         d.FocusScore,
			ProductiveSeconds:  d.ProductiveSeconds,
			NeutralSeconds:     d.NeutralSeconds,
			DistractingSeconds: d.DistractingSeconds,
			XPEarned:           d.XPEarned,
			IsProductive:       d.IsProductive,
			PeakHour:           d.PeakHour,
		})
	}
	return v
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Show the Focus Score of a day or a range",
	Long: `Show the Focus Score and category breakdown.

Without flags the current day is shown.

Examples:
  kafeel score
  kafeel score --date yesterday
  kafeel score --from 2026-03-02 --to 2026-03-08 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}

		from, to, err := scoreRange(app.Location)
		if err != nil {
			return err
		}

		summary, err := app.InsightsService.FocusSummary(cmd.Context(), queries.FocusSummaryQuery{From: from, To: to})
		if err != nil {
			return fmt.Errorf("failed to load focus summary: %w", err)
		}

		if JSONOutput() {
			return writeJSON(cmd.OutOrStdout(), NewSummaryView(summary))
		}
		printSummary(cmd, summary)
		return nil
	},
}

func scoreRange(loc *time.Location) (time.Time, time.Time, error) {
	if scoreFrom == "" && scoreTo == "" {
		day, err := ParseDate(scoreDate, loc)
		return day, day, err
	}
	if scoreDate != "" {
		return time.Time{}, time.Time{}, fmt.Errorf("--date cannot be combined with --from/--to")
	}
	from, err := ParseDate(scoreFrom, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := ParseDate(scoreTo, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func printSummary(cmd *cobra.Command, s *queries.FocusSummary) {
	out := cmd.OutOrStdout()
	title := "Focus Score " + s.From.Format(dateLayout)
	if !s.To.Equal(s.From) {
		title += " to " + s.To.Format(dateLayout)
	}
	heading(cmd, title)

	if s.TotalSeconds() == 0 {
		fmt.Fprintln(out, "    No activity tracked.")
		return
	}

	fmt.Fprintf(out, "    Score:       %5.1f %s\n", s.FocusScore, progressBar(s.FocusScore/100, 20))
	fmt.Fprintf(out, "    Productive:  %s\n", formatSeconds(s.ProductiveSeconds))
	fmt.Fprintf(out, "    Neutral:     %s\n", formatSeconds(s.NeutralSeconds))
	fmt.Fprintf(out, "    Distracting: %s\n", formatSeconds(s.DistractingSeconds))
	fmt.Fprintf(out, "    XP earned:   %d\n", s.XPEarned)

	if len(s.Days) > 1 {
		fmt.Fprintf(out, "    Productive days: %d of %d\n\n", s.ProductiveDays, len(s.Days))
		for _, d := range s.Days {
			marker := " "
			if d.IsProductive {
				marker = "*"
			}
			fmt.Fprintf(out, "    %s %s  %5.1f  %s\n", marker, d.Day.Format("Mon 2006-01-02"), d.FocusScore, formatSeconds(d.TotalSeconds()))
		}
	} else if len(s.Days) == 1 && s.Days[0].PeakHour != nil {
		fmt.Fprintf(out, "    Peak hour:   %02d:00\n", *s.Days[0].PeakHour)
	}
}

func init() {
	scoreCmd.Flags().StringVar(&scoreDate, "date", "", "day to show (YYYY-MM-DD, today, yesterday)")
	scoreCmd.Flags().StringVar(&scoreFrom, "from", "", "first day of the range")
	scoreCmd.Flags().StringVar(&scoreTo, "to", "", "last day of the range (defaults to today)")
	rootCmd.AddCommand(scoreCmd)
}
