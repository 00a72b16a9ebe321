package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// ErrNotInitialized is returned when a command runs without a wired app.
var ErrNotInitialized = errors.New("app not initialized")

const dateLayout = "2006-01-02"

func requireApp() (*App, error) {
	a := GetApp()
	if a == nil {
		return nil, ErrNotInitialized
	}
	return a, nil
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ParseDate parses a YYYY-MM-DD date as local midnight in loc. "today" and
// "yesterday" are accepted as well.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	t, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", value, err)
	}
	return t, nil
}

func heading(cmd *cobra.Command, title string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n  %s\n", title)
	fmt.Fprintln(out, strings.Repeat("=", 50))
}

func formatSeconds(seconds float64) string {
	d := time.Duration(seconds) * time.Second
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(dateLayout)
}

func progressBar(fraction float64, width int) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction * float64(width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
