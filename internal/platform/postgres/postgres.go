// Package postgres opens the database and runs write units inside
// serializable transactions with bounded retry.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"orgatlas/internal/platform/config"
	"orgatlas/internal/platform/metrics"
	"orgatlas/pkg/platform/tx"
)

const backendName = "postgres"

// Open connects with lib/pq and pings the server.
func Open(ctx context.Context, cfg config.Store) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Runner executes units of work in SERIALIZABLE transactions. A unit that
// loses a serialization race is re-run from scratch per the retry policy.
type Runner struct {
	db      *sql.DB
	policy  tx.RetryPolicy
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type RunnerOption func(*Runner)

func WithRetryPolicy(p tx.RetryPolicy) RunnerOption {
	return func(r *Runner) { r.policy = p }
}

func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

func NewRunner(db *sql.DB, opts ...RunnerOption) *Runner {
	r := &Runner{
		db:     db,
		policy: tx.DefaultRetryPolicy(),
		logger: slog.Default(),
		tracer: otel.Tracer("orgatlas/postgres"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithTx runs fn inside a serializable transaction carried in ctx. If ctx
// already carries a transaction, fn joins it and no retry happens at this
// level.
func (r *Runner) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := tx.From(ctx); ok {
		return fn(ctx)
	}

	ctx, span := r.tracer.Start(ctx, "postgres.tx")
	defer span.End()

	attempts := 0
	err := tx.Retry(ctx, r.policy, func(ctx context.Context) error {
		attempts++
		r.metrics.IncTxAttempt(backendName)
		return r.attempt(ctx, fn)
	}, func(attempt int, err error) {
		r.metrics.IncTxRetry(backendName)
		r.logger.DebugContext(ctx, "retrying serializable transaction", "attempt", attempt, "error", err)
	})
	span.SetAttributes(attribute.Int("tx.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, tx.ErrRetriesExhausted) {
			r.metrics.IncTxExhausted(backendName)
		}
	}
	return err
}

func (r *Runner) attempt(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	sqlTx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = sqlTx.Rollback()
		}
	}()

	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}
