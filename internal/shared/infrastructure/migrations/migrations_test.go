package migrations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/migrations"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: ":memory:"})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, migrations.Run(ctx, conn))

	t.Run("creates every table", func(t *testing.T) {
		for _, table := range []string{
			"activity_sessions", "category_mappings", "daily_scores", "streaks",
			"user_profiles", "achievements", "personal_records", "outbox_messages",
		} {
			var n int
			err := conn.QueryRow(ctx,
				`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
			require.NoError(t, err)
			assert.Equal(t, 1, n, table)
		}
	})

	t.Run("records versions and is idempotent", func(t *testing.T) {
		require.NoError(t, migrations.Run(ctx, conn))

		versions, err := migrations.Versions()
		require.NoError(t, err)

		var n int
		require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
		assert.Equal(t, len(versions), n)
	})
}
