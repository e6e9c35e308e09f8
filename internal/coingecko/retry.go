package coingecko

import (
	"context"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"crypto-tracker/internal/observability"
)

// Default retry backoff values.
const (
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// Retrying is an opt-in decorator that retries transient failures of the
// wrapped Requester a bounded number of times. Each attempt still goes
// through the wrapped client's pacing. Only errors accepted by Retryable
// are retried.
type Retrying struct {
	next       Requester
	maxRetries uint64
	newBackOff func() backoff.BackOff
	logger     *zap.Logger
}

// RetryOption configures Retrying.
type RetryOption func(*Retrying)

// WithBackOff replaces the backoff policy factory.
func WithBackOff(f func() backoff.BackOff) RetryOption {
	return func(r *Retrying) {
		r.newBackOff = f
	}
}

// WithRetryLogger sets the logger.
func WithRetryLogger(l *zap.Logger) RetryOption {
	return func(r *Retrying) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRetrying wraps next. maxRetries <= 0 disables retrying entirely.
func NewRetrying(next Requester, maxRetries int, opts ...RetryOption) *Retrying {
	if maxRetries < 0 {
		maxRetries = 0
	}
	r := &Retrying{
		next:       next,
		maxRetries: uint64(maxRetries),
		newBackOff: defaultBackOff,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = DefaultRetryDelay
	b.MaxInterval = DefaultMaxDelay
	b.Multiplier = DefaultBackoffMult
	b.MaxElapsedTime = 0
	return b
}

// Request delegates to the wrapped Requester, retrying transient failures.
func (r *Retrying) Request(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if r.maxRetries == 0 {
		return r.next.Request(ctx, endpoint, params, out)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), r.maxRetries), ctx)

	op := func() error {
		err := r.next.Request(ctx, endpoint, params, out)
		if err != nil && !Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		observability.RecordAPIRetry(endpoint)
		r.logger.Info("retrying price API request",
			zap.String("endpoint", endpoint),
			zap.Duration("backoff", wait),
			zap.Error(err))
	}

	return backoff.RetryNotify(op, policy, notify)
}

// Compile-time interface check.
var _ Requester = (*Retrying)(nil)
