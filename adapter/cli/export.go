package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/kafeel/internal/insights/application/queries"
	"github.com/felixgeelhaar/kafeel/internal/insights/domain"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/security"
)

var (
	exportFormat string
	exportOutput string
	exportDays   int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export daily scores",
	Long: `Export the daily scores of the last days as CSV, or as an
iCalendar file with one all-day event per scored day.

Examples:
  kafeel export                        # last 30 days as CSV on stdout
  kafeel export --format ics -o focus.ics
  kafeel export --days 7`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		if exportDays < 1 {
			return fmt.Errorf("--days must be at least 1")
		}

		to := app.Today()
		from := to.AddDate(0, 0, -(exportDays - 1))
		summary, err := app.InsightsService.FocusSummary(cmd.Context(), queries.FocusSummaryQuery{From: from, To: to})
		if err != nil {
			return fmt.Errorf("failed to load daily scores: %w", err)
		}

		var render func(io.Writer, []*domain.DailyScore) error
		switch exportFormat {
		case "csv":
			render = writeCSV
		case "ics", "ical":
			render = func(w io.Writer, days []*domain.DailyScore) error {
				_, err := io.WriteString(w, generateICS(days))
				return err
			}
		default:
			return fmt.Errorf("unsupported format: %s (supported: csv, ics)", exportFormat)
		}

		if exportOutput == "" {
			return render(cmd.OutOrStdout(), summary.Days)
		}

		f, err := security.CreateFile(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		if err := render(f, summary.Days); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d days to %s\n", len(summary.Days), exportOutput)
		return nil
	},
}

func writeCSV(w io.Writer, days []*domain.DailyScore) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"day", "focus_score", "productive_seconds", "neutral_seconds",
		"distracting_seconds", "xp_earned", "productive", "peak_hour",
	}); err != nil {
		return err
	}
	for _, d := range days {
		peak := ""
		if d.PeakHour != nil {
			peak = strconv.Itoa(*d.PeakHour)
		}
		if err := cw.Write([]string{
			d.Day.Format(dateLayout),
			strconv.FormatFloat(d.FocusScore, 'f', 1, 64),
			strconv.FormatFloat(d.ProductiveSeconds, 'f', 0, 64),
			strconv.FormatFloat(d.NeutralSeconds, 'f', 0, 64),
			strconv.FormatFloat(d.DistractingSeconds, 'f', 0, 64),
			strconv.FormatInt(d.XPEarned, 10),
			strconv.FormatBool(d.IsProductive),
			peak,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func generateICS(days []*domain.DailyScore) string {
	var sb strings.Builder

	sb.WriteString("BEGIN:VCALENDAR\r\n")
	sb.WriteString("VERSION:2.0\r\n")
	sb.WriteString("PRODID:-//Kafeel//Kafeel CLI//EN\r\n")
	sb.WriteString("CALSCALE:GREGORIAN\r\n")
	sb.WriteString("METHOD:PUBLISH\r\n")
	sb.WriteString("X-WR-CALNAME:Focus Scores\r\n")

	stamp := formatICSTime(time.Now())
	for _, d := range days {
		sb.WriteString("BEGIN:VEVENT\r\n")
		sb.WriteString(fmt.Sprintf("UID:%s@kafeel\r\n", d.Day.Format("20060102")))
		sb.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", stamp))
		sb.WriteString(fmt.Sprintf("DTSTART;VALUE=DATE:%s\r\n", d.Day.Format("20060102")))
		sb.WriteString(fmt.Sprintf("DTEND;VALUE=DATE:%s\r\n", d.Day.AddDate(0, 0, 1).Format("20060102")))
		sb.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(fmt.Sprintf("Focus %.1f", d.FocusScore))))

		desc := fmt.Sprintf("Productive: %s\\nNeutral: %s\\nDistracting: %s\\nXP: %d",
			formatSeconds(d.ProductiveSeconds), formatSeconds(d.NeutralSeconds),
			formatSeconds(d.DistractingSeconds), d.XPEarned)
		sb.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", desc))

		if d.IsProductive {
			sb.WriteString("CATEGORIES:PRODUCTIVE\r\n")
		}
		sb.WriteString("TRANSP:TRANSPARENT\r\n")
		sb.WriteString("END:VEVENT\r\n")
	}

	sb.WriteString("END:VCALENDAR\r\n")
	return sb.String()
}

func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "export format (csv, ics)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().IntVarP(&exportDays, "days", "d", 30, "number of days to export, ending today")

	rootCmd.AddCommand(exportCmd)
}
