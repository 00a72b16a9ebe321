// Package dbtest opens migrated SQLite databases for repository tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/migrations"
)

// NewSQLite returns an in-memory connection with the full schema applied.
// The connection is closed when the test finishes.
func NewSQLite(t testing.TB) database.Connection {
	t.Helper()

	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: ":memory:",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, migrations.Run(ctx, conn))
	return conn
}
