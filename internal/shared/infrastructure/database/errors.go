package database

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNoRows marks a lookup that matched nothing.
var ErrNoRows = errors.New("no rows in result set")

// IsNoRows reports whether err is a miss from either backend.
func IsNoRows(err error) bool {
	for _, miss := range []error{ErrNoRows, sql.ErrNoRows, pgx.ErrNoRows} {
		if errors.Is(err, miss) {
			return true
		}
	}
	return false
}
