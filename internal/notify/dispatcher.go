package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"orgatlas/pkg/platform/circuit"
)

const defaultPublishTimeout = 5 * time.Second

// Dispatcher fans committed changes out to a Publisher without blocking the
// caller. Each Notify runs in its own goroutine, detached from the request
// context so a finished request does not cancel delivery.
//
// The primary publisher is always tried first. After enough consecutive
// failures the breaker opens and failed messages go to the fallback publisher
// until the primary recovers.
type Dispatcher struct {
	primary  Publisher
	fallback Publisher
	breaker  *circuit.Breaker
	topic    string
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *Metrics

	wg sync.WaitGroup
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithTopic(topic string) Option {
	return func(d *Dispatcher) {
		if topic != "" {
			d.topic = topic
		}
	}
}

func WithFallback(p Publisher) Option {
	return func(d *Dispatcher) {
		if p != nil {
			d.fallback = p
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(d *Dispatcher) {
		if b != nil {
			d.breaker = b
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// NewDispatcher creates a dispatcher around primary. Without options it
// publishes on DefaultTopic and falls back to a LogPublisher.
func NewDispatcher(primary Publisher, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		primary: primary,
		breaker: circuit.New("notify"),
		topic:   DefaultTopic,
		timeout: defaultPublishTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.fallback == nil {
		d.fallback = NewLogPublisher(d.logger)
	}
	return d
}

// Notify schedules delivery of msg and returns immediately.
func (d *Dispatcher) Notify(ctx context.Context, msg Message) {
	if d == nil || d.primary == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		d.deliver(pubCtx, msg)
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	err := d.primary.Publish(ctx, d.topic, msg)
	if err == nil {
		d.metrics.IncPublished()
		if _, change := d.breaker.RecordSuccess(); change.Closed {
			d.metrics.SetCircuitBreakerState(false)
			d.logger.InfoContext(ctx, "notification circuit closed", "breaker", d.breaker.Name())
		}
		return
	}

	d.metrics.IncFailures()
	useFallback, change := d.breaker.RecordFailure()
	if change.Opened {
		d.metrics.SetCircuitBreakerState(true)
		d.logger.WarnContext(ctx, "notification circuit opened", "breaker", d.breaker.Name())
	}
	if !useFallback {
		d.logger.WarnContext(ctx, "notification dropped",
			"entity", msg.Entity,
			"action", msg.Action,
			"id", msg.ID,
			"error", err,
		)
		return
	}
	d.metrics.IncFallbackUsed()
	if ferr := d.fallback.Publish(ctx, d.topic, msg); ferr != nil {
		d.logger.ErrorContext(ctx, "fallback notification failed", "error", ferr)
	}
}

// Wait blocks until every scheduled delivery has finished or ctx ends.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
