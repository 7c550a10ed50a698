package tx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lib/pq"

	dErrors "orgatlas/pkg/domain-errors"
	"orgatlas/pkg/platform/sentinel"
)

// Retry defaults for serializable write transactions.
const (
	DefaultMaxAttempts  = 5
	DefaultInitialDelay = 100 * time.Millisecond
	DefaultMultiplier   = 2.0
)

// Postgres SQLSTATEs that indicate the transaction lost a concurrency race and
// may succeed when re-run from scratch.
const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

// ErrRetriesExhausted is in the chain of the error Retry returns when every
// attempt failed with a transient error.
var ErrRetriesExhausted = errors.New("retries exhausted")

// RetryPolicy bounds the retry loop around a transaction attempt.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
}

// DefaultRetryPolicy returns five attempts starting at 100ms and doubling.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  DefaultMaxAttempts,
		InitialDelay: DefaultInitialDelay,
		Multiplier:   DefaultMultiplier,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = DefaultInitialDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = DefaultMultiplier
	}
	return p
}

// Delays returns the sleep before each retry, in order. Its length is
// MaxAttempts-1.
func (p RetryPolicy) Delays() []time.Duration {
	p = p.normalized()
	b := p.backoff()
	delays := make([]time.Duration, 0, p.MaxAttempts-1)
	for i := 1; i < p.MaxAttempts; i++ {
		delays = append(delays, b.NextBackOff())
	}
	return delays
}

func (p RetryPolicy) backoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = 0
	b.MaxInterval = p.InitialDelay * time.Duration(1<<uint(p.MaxAttempts))
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// IsTransient reports whether err is store-level contention worth retrying.
// Domain errors are never transient.
func IsTransient(err error) bool {
	if err == nil || dErrors.IsDomain(err) {
		return false
	}
	if errors.Is(err, sentinel.ErrUnavailable) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqSerializationFailure, pqDeadlockDetected:
			return true
		}
	}
	return false
}

// Retry runs fn until it succeeds, fails with a non-transient error, the
// context ends, or the policy's attempts run out. onRetry, when non-nil, is
// called before each sleep with the 1-based attempt that just failed.
func Retry(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error, onRetry func(attempt int, err error)) error {
	policy = policy.normalized()
	attempt := 0
	op := func() error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, _ time.Duration) {
		if onRetry != nil {
			onRetry(attempt, err)
		}
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(policy.backoff(), uint64(policy.MaxAttempts-1)),
		ctx,
	)
	err := backoff.RetryNotify(op, b, notify)
	if err == nil {
		return nil
	}
	if IsTransient(err) {
		return dErrors.Wrap(fmt.Errorf("%w: %w", ErrRetriesExhausted, err), dErrors.CodeInternal,
			fmt.Sprintf("transaction failed after %d attempts", attempt))
	}
	return err
}
