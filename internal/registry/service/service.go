// Package service implements the organization registry: reference resolution
// for nested entities, organization validation, guarded deletes of shared
// entities, merge and bulk import. Every write runs through a TxRunner and
// emits a change notification after commit.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"orgatlas/internal/notify"
	"orgatlas/internal/registry/metrics"
	dErrors "orgatlas/pkg/domain-errors"
	"orgatlas/pkg/platform/sentinel"
	"orgatlas/pkg/requestcontext"
)

// DefaultImportMaxSize is the exclusive upper bound on entries per import.
const DefaultImportMaxSize = 100

// Service orchestrates the registry.
type Service struct {
	locations     LocationStore
	coordinates   CoordinatesStore
	addresses     AddressStore
	organizations OrganizationStore
	history       ImportHistoryStore

	tx            TxRunner
	notifier      Notifier
	logger        *slog.Logger
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	importMaxSize int
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithImportMaxSize sets the exclusive upper bound on entries per import.
func WithImportMaxSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.importMaxSize = n
		}
	}
}

// New constructs a Service. Every store and the runner are required.
func New(stores Stores, runner TxRunner, opts ...Option) (*Service, error) {
	if stores.Locations == nil || stores.Coordinates == nil || stores.Addresses == nil ||
		stores.Organizations == nil || stores.History == nil {
		return nil, errors.New("registry service: all stores are required")
	}
	if runner == nil {
		return nil, errors.New("registry service: tx runner is required")
	}
	s := &Service{
		locations:     stores.Locations,
		coordinates:   stores.Coordinates,
		addresses:     stores.Addresses,
		organizations: stores.Organizations,
		history:       stores.History,
		tx:            runner,
		logger:        slog.Default(),
		tracer:        otel.Tracer("orgatlas/registry"),
		importMaxSize: DefaultImportMaxSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// committed records metrics and schedules the notification for a write that
// has committed.
func (s *Service) committed(ctx context.Context, entity notify.Entity, action notify.Action, id int64) {
	s.metrics.IncEntityWrite(string(entity), string(action))
	s.logger.InfoContext(ctx, "registry write committed",
		"entity", entity,
		"action", action,
		"id", id,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, notify.Message{
		Entity:     entity,
		Action:     action,
		ID:         id,
		OccurredAt: requestcontext.Now(ctx).UTC(),
		RequestID:  requestcontext.RequestID(ctx),
	})
}

// inTx runs fn through the runner, observing duration under operation.
func (s *Service) inTx(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	start := time.Now()
	defer s.metrics.ObserveOperation(operation, start)
	return s.tx.WithTx(ctx, fn)
}

// notFound translates a store miss into a caller-facing NotFound. Other store
// errors keep their chain so the runner can classify contention.
func notFound(err error, entity string, id fmt.Stringer) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Newf(dErrors.CodeNotFound, "%s not found with id: %s", entity, id)
	}
	return fmt.Errorf("load %s %s: %w", entity, id, err)
}

// storeFailure wraps a failed write. Constraint violations the store reports
// as conflicts surface as Conflict; anything else keeps its chain.
func storeFailure(op string, err error) error {
	if errors.Is(err, sentinel.ErrConflict) {
		return dErrors.Wrap(err, dErrors.CodeConflict, op+" conflicts with existing data")
	}
	return fmt.Errorf("%s: %w", op, err)
}

// now returns the request clock truncated to what every store can hold.
func now(ctx context.Context) time.Time {
	return requestcontext.Now(ctx).UTC().Truncate(time.Microsecond)
}
