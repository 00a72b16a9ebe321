package database

import "context"

// Row is a single scanned row. *sql.Row and pgx.Row satisfy it as is.
type Row interface {
	Scan(dest ...any) error
}

// Rows iterates a result set. *sql.Rows satisfies it as is; the postgres
// package adapts pgx.Rows.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

// Result reports how many rows a write touched. Every table is keyed by
// UUID, so generated ids are never read back.
type Result interface {
	RowsAffected() (int64, error)
}

// Executor runs SQL written with ? placeholders against either backend.
type Executor interface {
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Query(ctx context.Context, query string, args ...any) (Rows, error)
}

// Transaction is an Executor that ends in exactly one Commit or Rollback.
type Transaction interface {
	Executor
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Connection is an open store.
type Connection interface {
	Executor
	BeginTx(ctx context.Context) (Transaction, error)
	Ping(ctx context.Context) error
	Driver() Driver
	Close() error
}
