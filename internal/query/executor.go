package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/campusflow/compass-backend/internal/apperrors"
)

const (
	// connectAttempts bounds retries for transient connection failures.
	// Compiled queries are plain SELECTs, so a retry is always safe.
	connectAttempts = 3
)

// Executor runs compiled queries. It is the only component in the query
// path that performs blocking I/O; everything upstream is pure.
type Executor struct {
	pool    *pgxpool.Pool
	timeout time.Duration
	log     zerolog.Logger
}

// NewExecutor creates an Executor with a bounded per-query timeout.
func NewExecutor(pool *pgxpool.Pool, timeout time.Duration, log zerolog.Logger) *Executor {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Executor{
		pool:    pool,
		timeout: timeout,
		log:     log.With().Str("component", "query_executor").Logger(),
	}
}

// Run executes a compiled query and returns rows as column-name maps.
// Timeouts and connection failures come back as distinct error kinds so
// callers can tell a rejected query apart from an unavailable database.
// Connection failures are retried a bounded number of times; timeouts and
// compile-time rejections never are.
func (e *Executor) Run(ctx context.Context, q Compiled) ([]map[string]interface{}, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		rows, err := e.runOnce(ctx, q)
		if err == nil {
			return rows, nil
		}
		lastErr = err
		if !errors.Is(err, apperrors.ErrDBUnavailable) {
			return nil, err
		}
		e.log.Warn().Err(err).Int("attempt", attempt).Msg("query connection failure")
	}
	return nil, lastErr
}

func (e *Executor) runOnce(ctx context.Context, q Compiled) ([]map[string]interface{}, error) {
	queryCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	rows, err := e.pool.Query(queryCtx, q.SQL, q.Args...)
	if err != nil {
		return nil, e.classify(err, queryCtx)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []map[string]interface{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, e.classify(err, queryCtx)
		}
		row := make(map[string]interface{}, len(fields))
		for i, fd := range fields {
			row[fd.Name] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, e.classify(err, queryCtx)
	}
	return out, nil
}

// classify folds pgx errors into the executor's two failure kinds.
func (e *Executor) classify(err error, ctx context.Context) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", apperrors.ErrQueryTimeout, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// The server answered; this is a query-level failure, not an
		// availability problem.
		return err
	}
	return fmt.Errorf("%w: %v", apperrors.ErrDBUnavailable, err)
}
