// Package memory keeps the registry in process memory. All stores share one
// DB so a Runner transaction spans every entity.
package memory

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"orgatlas/internal/platform/metrics"
	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
	"orgatlas/pkg/platform/tx"
)

const backendName = "memory"

type state struct {
	locations     map[id.LocationID]models.Location
	coordinates   map[id.CoordinatesID]models.Coordinates
	addresses     map[id.AddressID]models.Address
	organizations map[id.OrganizationID]models.Organization
	history       map[id.ImportID]models.ImportHistory

	nextLocation     int64
	nextCoordinates  int64
	nextAddress      int64
	nextOrganization int64
	nextImport       int64
}

func newState() *state {
	return &state{
		locations:     make(map[id.LocationID]models.Location),
		coordinates:   make(map[id.CoordinatesID]models.Coordinates),
		addresses:     make(map[id.AddressID]models.Address),
		organizations: make(map[id.OrganizationID]models.Organization),
		history:       make(map[id.ImportID]models.ImportHistory),
	}
}

// clone copies the maps. Stores copy pointer fields in and out, so stored
// values never change and a shallow copy is enough.
func (s *state) clone() *state {
	c := *s
	c.locations = maps.Clone(s.locations)
	c.coordinates = maps.Clone(s.coordinates)
	c.addresses = maps.Clone(s.addresses)
	c.organizations = maps.Clone(s.organizations)
	c.history = maps.Clone(s.history)
	return &c
}

// DB holds the committed state. Transactions work on a private snapshot that
// replaces the committed state on success.
type DB struct {
	mu        sync.RWMutex
	committed *state

	// writer serializes transactions and autocommit writes.
	writer sync.Mutex
}

func NewDB() *DB {
	return &DB{committed: newState()}
}

type txKey struct{}

type memTx struct {
	db    *DB
	state *state
}

func (db *DB) txFrom(ctx context.Context) (*memTx, bool) {
	t, ok := ctx.Value(txKey{}).(*memTx)
	if !ok || t.db != db {
		return nil, false
	}
	return t, true
}

func (db *DB) read(ctx context.Context, fn func(s *state) error) error {
	if t, ok := db.txFrom(ctx); ok {
		return fn(t.state)
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(db.committed)
}

func (db *DB) write(ctx context.Context, fn func(s *state) error) error {
	if t, ok := db.txFrom(ctx); ok {
		return fn(t.state)
	}
	db.writer.Lock()
	defer db.writer.Unlock()
	work := db.snapshot()
	if err := fn(work); err != nil {
		return err
	}
	db.publish(work)
	return nil
}

func (db *DB) snapshot() *state {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.committed.clone()
}

func (db *DB) publish(s *state) {
	db.mu.Lock()
	db.committed = s
	db.mu.Unlock()
}

// Runner implements the registry transaction port over a DB.
type Runner struct {
	db      *DB
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

func NewRunner(db *DB, opts ...RunnerOption) *Runner {
	r := &Runner{
		db:     db,
		policy: tx.DefaultRetryPolicy(),
		logger: slog.Default(),
		tracer: otel.Tracer("orgatlas/memory"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithTx runs fn against a snapshot and commits it when fn succeeds. Nested
// calls join the outer transaction.
func (r *Runner) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := r.db.txFrom(ctx); ok {
		return fn(ctx)
	}

	ctx, span := r.tracer.Start(ctx, "memory.tx")
	defer span.End()

	attempts := 0
	err := tx.Retry(ctx, r.policy, func(ctx context.Context) error {
		attempts++
		r.metrics.IncTxAttempt(backendName)
		return r.attempt(ctx, fn)
	}, func(attempt int, err error) {
		r.metrics.IncTxRetry(backendName)
		r.logger.DebugContext(ctx, "retrying memory transaction", "attempt", attempt, "error", err)
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

func (r *Runner) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	r.db.writer.Lock()
	defer r.db.writer.Unlock()

	t := &memTx{db: r.db, state: r.db.snapshot()}
	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		return err
	}
	r.db.publish(t.state)
	return nil
}
