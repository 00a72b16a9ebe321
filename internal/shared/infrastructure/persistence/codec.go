// Package persistence holds the column encodings shared by the SQL
// repositories. Every backend stores instants and calendar days as TEXT so
// the same queries run against SQLite and PostgreSQL and sort lexically.
package persistence

import (
	"database/sql"
	"fmt"
	"time"
)

const (
	// TimeLayout is the fixed-width UTC layout for instants.
	TimeLayout = "2006-01-02T15:04:05.000000Z"
	// DayLayout is the layout for calendar days.
	DayLayout = "2006-01-02"
)

// FormatTime encodes an instant in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime decodes a value written by FormatTime.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

// FormatDay encodes the calendar date of t in t's own location.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay decodes a calendar day as local midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DayLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return t, nil
}

// NullTime encodes an optional instant.
func NullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: FormatTime(*t), Valid: true}
}

// NullDay encodes an optional calendar day.
func NullDay(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: FormatDay(*t), Valid: true}
}

// NullString encodes an optional string, treating "" as absent.
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// TimePtr decodes an optional instant.
func TimePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := ParseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DayPtr decodes an optional calendar day.
func DayPtr(ns sql.NullString, loc *time.Location) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := ParseDay(ns.String, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// BoolInt encodes a boolean as 0 or 1.
func BoolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
