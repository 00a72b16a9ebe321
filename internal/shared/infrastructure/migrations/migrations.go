// Package migrations applies the embedded schema to either backend.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/kafeel/internal/shared/application"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/persistence"
)

//go:embed sql/*.up.sql
var schemaFS embed.FS

const createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version TEXT PRIMARY KEY,
    applied_at TEXT NOT NULL
)`

// Versions lists the embedded migration files in apply order.
func Versions() ([]string, error) {
	entries, err := schemaFS.ReadDir("sql")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Run applies every migration not yet recorded in schema_migrations. Each
// file runs in its own transaction.
func Run(ctx context.Context, conn database.Connection) error {
	if _, err := conn.Exec(ctx, createVersionTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	files, err := Versions()
	if err != nil {
		return err
	}

	uow := database.NewUnitOfWork(conn)
	for _, file := range files {
		applied, err := isApplied(ctx, conn, file)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		body, err := schemaFS.ReadFile("sql/" + file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		err = application.WithUnitOfWork(ctx, uow, func(txCtx context.Context) error {
			exec := database.ExecutorFromContext(txCtx, conn)
			for _, stmt := range statements(string(body)) {
				if _, err := exec.Exec(txCtx, stmt); err != nil {
					return err
				}
			}
			_, err := exec.Exec(txCtx,
				`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
				file, persistence.FormatTime(time.Now()))
			return err
		})
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return nil
}

func isApplied(ctx context.Context, conn database.Connection, version string) (bool, error) {
	var n int
	err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", version, err)
	}
	return n > 0, nil
}

// statements splits a migration file on semicolons. The schema files never
// contain semicolons inside literals.
func statements(body string) []string {
	var out []string
	for _, part := range strings.Split(body, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
