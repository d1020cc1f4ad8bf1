package services

import (
	"context"

	"github.com/upb/ciw-intake/repositories"
)

// WithTransaction executes a function within a database transaction.
// Automatically commits on success, rolls back on error.
func WithTransaction(ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	if err := txMgr.InTransaction(ctx, fn); err != nil {
		return WrapError(ErrTransactionFailed, err)
	}
	return nil
}

// WithTransactionResult executes a function within a database transaction and returns a result.
// The result is the zero value whenever the transaction did not commit. The
// returned error wraps ErrTransactionFailed and, through it, fn's own error.
func WithTransactionResult[T any](ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context, tx repositories.Transaction) (T, error)) (T, error) {
	var result T

	err := txMgr.InTransaction(ctx, func(ctx context.Context, tx repositories.Transaction) error {
		r, err := fn(ctx, tx)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		var zero T
		return zero, WrapError(ErrTransactionFailed, err)
	}

	return result, nil
}
