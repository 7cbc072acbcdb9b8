package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"viral-reward/internal/core/port"
)

// SQLSTATE codes that mean "try the whole transaction again".
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
	codeNumericOutOfRange    = "22003"
)

// Options tunes transaction retries. OnRetry, if set, is called before
// each replay with the attempt number (starting at 1) and the cause.
type Options struct {
	MaxRetries int
	Backoff    time.Duration
	OnRetry    func(attempt int, err error)
}

// Store implements port.Store using pgxpool for PostgreSQL. Transactions
// run at serializable isolation and lock the rows they write, so
// concurrent settlements on shared rows either queue or fail with a
// serialization error that WithinTx replays.
type Store struct {
	pool *pgxpool.Pool
	opts Options
}

var _ port.Store = (*Store)(nil)

// NewStore returns a new store instance.
func NewStore(pool *pgxpool.Pool, opts Options) *Store {
	return &Store{pool: pool, opts: opts}
}

// WithinTx implements port.Store. After MaxRetries replays it gives up with
// port.ErrConflictRetryExhausted.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) error {
	return retry(ctx, s.opts, func() error { return s.runTx(ctx, fn) })
}

func retry(ctx context.Context, opts Options, run func() error) error {
	for attempt := 0; ; attempt++ {
		err := run()
		if err == nil || !isConflict(err) {
			return err
		}
		if attempt >= opts.MaxRetries {
			return fmt.Errorf("%w after %d attempts: %v", port.ErrConflictRetryExhausted, attempt+1, err)
		}
		if opts.OnRetry != nil {
			opts.OnRetry(attempt+1, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(opts.Backoff * time.Duration(attempt+1)):
		}
	}
}

func (s *Store) runTx(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		// Under serializable isolation the conflict may only surface here.
		err = tx.Commit(ctx)
	}()
	return fn(ctx, &pgTx{tx: tx})
}

func isConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != codeUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func isOutOfRange(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeNumericOutOfRange
}
