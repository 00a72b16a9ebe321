// Package database abstracts the SQL backends the tracker can persist to.
package database

import "strings"

// Driver represents a database backend type.
type Driver string

const (
	// DriverPostgres represents PostgreSQL.
	DriverPostgres Driver = "postgres"
	// DriverSQLite represents the embedded SQLite file store.
	DriverSQLite Driver = "sqlite"
)

func (d Driver) String() string {
	return string(d)
}

// DetectDriver infers the backend from a connection string. An empty URL
// selects the local SQLite store.
func DetectDriver(url string) Driver {
	switch {
	case url == "":
		return DriverSQLite
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(url, "sqlite://"),
		strings.HasPrefix(url, "file:"),
		strings.HasSuffix(url, ".db"),
		strings.HasSuffix(url, ".sqlite"),
		strings.HasSuffix(url, ".sqlite3"):
		return DriverSQLite
	}
	return DriverPostgres
}

// IsValid reports whether the driver is a known type.
func (d Driver) IsValid() bool {
	return d == DriverPostgres || d == DriverSQLite
}

// SQLitePathFromURL strips a sqlite:// scheme so the remainder can be used
// as a file path.
func SQLitePathFromURL(url string) string {
	return strings.TrimPrefix(url, "sqlite://")
}
