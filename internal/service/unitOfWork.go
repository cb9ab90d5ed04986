package service

import (
	"context"
	"errors"

	"github.com/AirTechNEO/coworkconnect/internal/database"
	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/AirTechNEO/coworkconnect/pkg/retry"
)

// txRunner reruns a whole unit of work when it lost a version race.
type txRunner struct {
	tx    database.UnitOfWork
	retry *retry.RetryManager
}

func newTxRunner(tx database.UnitOfWork, retryManager *retry.RetryManager) *txRunner {
	return &txRunner{tx: tx, retry: retryManager}
}

// IsRetryable reports whether an operation failed only because of a concurrent writer.
func IsRetryable(err error) bool {
	return errors.Is(err, entity.ErrConcurrentUpdate)
}

func (r *txRunner) run(ctx context.Context, fn func(ctx context.Context) error) error {
	exhausted, err := r.retry.Do(ctx, func(ctx context.Context) error {
		return r.tx.WithinTx(ctx, fn)
	})
	if exhausted {
		return entity.ErrRetriesExhausted.Wrap(err)
	}
	return err
}
