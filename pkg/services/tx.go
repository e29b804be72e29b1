package services

import "context"

// TxRunner runs a function inside a database transaction. *database.DB
// satisfies it; tests substitute a runner that invokes fn directly.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
