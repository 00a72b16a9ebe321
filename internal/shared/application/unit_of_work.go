// Package application contains application-layer primitives shared by all
// bounded contexts.
package application

import (
	"context"
	"errors"
	"fmt"
)

// UnitOfWork groups several repository writes into one atomic change.
type UnitOfWork interface {
	Begin(ctx context.Context) (context.Context, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWorkFunc is a function that executes within a unit of work.
type UnitOfWorkFunc func(ctx context.Context) error

// WithUnitOfWork executes fn within a unit of work. Either every write made
// through the returned context is committed, or none is.
func WithUnitOfWork(ctx context.Context, uow UnitOfWork, fn UnitOfWorkFunc) error {
	txCtx, err := uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}

	if err := fn(txCtx); err != nil {
		if rbErr := uow.Rollback(txCtx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := uow.Commit(txCtx); err != nil {
		return fmt.Errorf("commit unit of work: %w", err)
	}
	return nil
}
