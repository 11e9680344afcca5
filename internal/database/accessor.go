package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/coursehub/coursehub/internal/apperror"
)

// uniqueViolation is the PostgreSQL error code for a violated unique
// constraint.
const uniqueViolation = "23505"

// Accessor executes templated queries against the connection pool and
// translates store errors into the domain taxonomy.
type Accessor struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewAccessor(pool *pgxpool.Pool, logger *zap.Logger) *Accessor {
	return &Accessor{pool: pool, logger: logger}
}

// Pool exposes the underlying pool for lifecycle management.
func (a *Accessor) Pool() *pgxpool.Pool {
	return a.pool
}

// Query executes a statement returning a row stream.
func (a *Accessor) Query(ctx context.Context, q *Query) (pgx.Rows, error) {
	if err := q.Err(); err != nil {
		return nil, err
	}
	rows, err := a.pool.Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		a.logger.Error("query failed", zap.String("sql", q.SQL()), zap.Error(err))
		return nil, Translate(err)
	}
	return rows, nil
}

// QueryRow executes a statement expected to return a single row. Errors,
// including pgx.ErrNoRows, surface from Scan on the returned row.
func (a *Accessor) QueryRow(ctx context.Context, q *Query) Row {
	if err := q.Err(); err != nil {
		return Row{err: err}
	}
	return Row{row: a.pool.QueryRow(ctx, q.SQL(), q.Args()...)}
}

// Exec executes a command and returns the affected row count.
func (a *Accessor) Exec(ctx context.Context, q *Query) (int64, error) {
	if err := q.Err(); err != nil {
		return 0, err
	}
	tag, err := a.pool.Exec(ctx, q.SQL(), q.Args()...)
	if err != nil {
		a.logger.Error("exec failed", zap.String("sql", q.SQL()), zap.Error(err))
		return 0, Translate(err)
	}
	return tag.RowsAffected(), nil
}

// Row defers error translation until Scan, mirroring pgx.Row.
type Row struct {
	row pgx.Row
	err error
}

func (r Row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return Translate(r.row.Scan(dest...))
}

// Scalar executes a statement returning a single value.
func Scalar[T any](ctx context.Context, a *Accessor, q *Query) (T, error) {
	var value T
	if err := a.QueryRow(ctx, q).Scan(&value); err != nil {
		return value, err
	}
	return value, nil
}

// Translate maps store errors onto the domain taxonomy: missing rows become
// apperror.ErrNotFound and unique-constraint violations become
// apperror.ErrConstraintViolation. Everything else passes through.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", apperror.ErrNotFound, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", apperror.ErrConstraintViolation, pgErr.ConstraintName)
	}
	return err
}
