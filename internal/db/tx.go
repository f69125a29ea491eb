package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
)

type TxBeginner interface {
	BeginTx(ctx context.Context) (Tx, error)
}

// SQLSTATE codes.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
)

const (
	defaultMaxAttempts = 3
	retryBackoff       = 20 * time.Millisecond
)

// Runner executes a function inside one transaction, committing on success
// and rolling back on error. Serialization failures and deadlocks are retried
// up to maxAttempts times; other errors are returned as is.
type Runner struct {
	db          TxBeginner
	maxAttempts int
}

func NewRunner(db TxBeginner, maxAttempts int) *Runner {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Runner{db: db, maxAttempts: maxAttempts}
}

func (r *Runner) RunInTx(ctx context.Context, fn func(tx Tx) error) error {
	for attempt := 1; ; attempt++ {
		err := r.runOnce(ctx, fn)
		if err == nil || !IsRetryable(err) || attempt >= r.maxAttempts {
			return err
		}

		select {
		case <-time.After(time.Duration(attempt) * retryBackoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *Runner) runOnce(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// IsRetryable reports whether err is transient contention that a fresh
// transaction may not hit again.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}
