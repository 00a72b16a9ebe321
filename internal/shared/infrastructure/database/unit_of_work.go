package database

import (
	"context"
	"errors"
)

// ErrNoTransaction is returned when Commit or Rollback find no transaction.
var ErrNoTransaction = errors.New("no transaction in context")

type txKey struct{}

// txScope is the transaction carried by a context. Only the unit that
// began it ends it.
type txScope struct {
	tx    Transaction
	owner bool
}

func scopeFrom(ctx context.Context) (txScope, bool) {
	scope, ok := ctx.Value(txKey{}).(txScope)
	return scope, ok && scope.tx != nil
}

// ExecutorFromContext returns the transaction carried by ctx, or conn when
// there is none. Repositories resolve it per statement so that writes made
// inside a unit of work join its transaction.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if scope, ok := scopeFrom(ctx); ok {
		return scope.tx
	}
	return conn
}

// GenericUnitOfWork implements application.UnitOfWork over any Connection.
type GenericUnitOfWork struct {
	conn Connection
}

// NewUnitOfWork creates a new GenericUnitOfWork.
func NewUnitOfWork(conn Connection) *GenericUnitOfWork {
	return &GenericUnitOfWork{conn: conn}
}

// Begin starts a transaction and stores it in the context. A transaction
// already present in ctx is joined instead, and the joined unit neither
// commits nor rolls it back.
func (u *GenericUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if scope, ok := scopeFrom(ctx); ok {
		return context.WithValue(ctx, txKey{}, txScope{tx: scope.tx}), nil
	}

	tx, err := u.conn.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return context.WithValue(ctx, txKey{}, txScope{tx: tx, owner: true}), nil
}

// Commit commits the transaction if this unit owns it.
func (u *GenericUnitOfWork) Commit(ctx context.Context) error {
	return end(ctx, Transaction.Commit)
}

// Rollback rolls back the transaction if this unit owns it.
func (u *GenericUnitOfWork) Rollback(ctx context.Context) error {
	return end(ctx, Transaction.Rollback)
}

func end(ctx context.Context, finish func(Transaction, context.Context) error) error {
	scope, ok := scopeFrom(ctx)
	if !ok {
		return ErrNoTransaction
	}
	if !scope.owner {
		return nil
	}
	return finish(scope.tx, ctx)
}
