package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx operations repositories use. Both a
// pooled connection and an open transaction satisfy it, so repository
// code is identical inside and outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Scope wraps the connection (or transaction) a request's repository
// calls run against.
type Scope struct {
	Conn    Querier
	release func()
}

// Close releases the underlying connection back to the pool. Safe to
// call on transaction-backed scopes, where it is a no-op (the
// transaction owns the connection).
func (s *Scope) Close() {
	if s.release != nil {
		s.release()
	}
}

type contextKey string

// ScopeKey is the context key for storing the request's database scope.
const ScopeKey contextKey = "dbScope"

// GetScope retrieves the database scope from context.
// Returns nil and false if not present.
func GetScope(ctx context.Context) (*Scope, bool) {
	scope, ok := ctx.Value(ScopeKey).(*Scope)
	return scope, ok
}

// SetScope stores the database scope in context.
func SetScope(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, ScopeKey, scope)
}

// Acquire checks out a pooled connection wrapped in a Scope. The
// returned scope MUST be closed with defer scope.Close().
func (db *DB) Acquire(ctx context.Context) (*Scope, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &Scope{Conn: conn, release: conn.Release}, nil
}

// RunInTx runs fn with a transaction-backed scope set in context.
// The transaction commits if fn returns nil and rolls back otherwise,
// so multi-step writes are either fully observable or not at all.
func (db *DB) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}

	txCtx := SetScope(ctx, &Scope{Conn: tx})
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
