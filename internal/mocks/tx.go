package mocks

import (
	"context"

	"github.com/cleanapi/cleanapi/internal/store"
)

// TxRunner returns a store.TxRunner that calls fn with a nil transaction.
// Store mocks ignore the transaction, so the callback sees the same data.
func TxRunner() store.TxRunner {
	return func(ctx context.Context, fn store.TxFn) error {
		return fn(ctx, nil)
	}
}

// FailingTxRunner returns a store.TxRunner that never calls fn.
func FailingTxRunner(err error) store.TxRunner {
	return func(context.Context, store.TxFn) error {
		return err
	}
}
