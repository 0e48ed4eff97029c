// Package mocks provides centralized mock implementations for testing.
//
// Each mock has a function field per interface method. When a field is nil
// the mock falls back to a small in-memory implementation, so most tests only
// override the calls they care about:
//
//	users := mocks.NewMockUserStore()
//	users.GetByIDFn = func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
//	    return nil, store.ErrUserNotFound
//	}
//
// Store mocks return themselves from WithTx, and TxRunner runs the callback
// without a transaction, so services can be tested without a database.
package mocks
