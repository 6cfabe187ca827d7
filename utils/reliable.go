package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UltimateTournament/backoff/v4"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ReliableExec runs f against a pooled connection, retrying with
// exponential backoff until it succeeds, f returns a permanent error, or
// ctx dies. Each attempt gets its own timeout.
func ReliableExec(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, f func(ctx context.Context, conn *pgxpool.Conn) error) error {
	return backoff.Retry(func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		conn, err := pool.Acquire(attemptCtx)
		if err != nil {
			return fmt.Errorf("error acquiring pool connection: %w", err)
		}
		defer conn.Release()
		return permanentIfFlagged(f(attemptCtx, conn))
	}, backoff.WithContext(backoff.NewExponentialBackOff(), ctx))
}

// ReliableExecInTx is ReliableExec but f runs inside a transaction that
// commits on nil and rolls back on error.
func ReliableExecInTx(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, f func(ctx context.Context, tx pgx.Tx) error) error {
	return backoff.Retry(func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		tx, err := pool.Begin(attemptCtx)
		if err != nil {
			return fmt.Errorf("error beginning transaction: %w", err)
		}
		err = f(attemptCtx, tx)
		if err != nil {
			if rbErr := tx.Rollback(attemptCtx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				return fmt.Errorf("error rolling back (original error: %s): %w", err, rbErr)
			}
			return permanentIfFlagged(err)
		}
		if err := tx.Commit(attemptCtx); err != nil {
			return fmt.Errorf("error committing transaction: %w", err)
		}
		return nil
	}, backoff.WithContext(backoff.NewExponentialBackOff(), ctx))
}

func permanentIfFlagged(err error) error {
	if err == nil {
		return nil
	}
	var pe PermanentError
	if errors.As(err, &pe) && pe.IsPermanent() {
		return backoff.Permanent(err)
	}
	return err
}
