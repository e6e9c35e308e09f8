package coingecko

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-tracker/internal/domain"
)

// scriptedRequester returns errs in order, then succeeds.
type scriptedRequester struct {
	errs  []error
	calls int
}

func (s *scriptedRequester) Request(_ context.Context, _ string, _ url.Values, _ interface{}) error {
	s.calls++
	if s.calls <= len(s.errs) {
		return s.errs[s.calls-1]
	}
	return nil
}

func zeroBackOff() backoff.BackOff { return &backoff.ZeroBackOff{} }

func TestRetrying_RetriesTransientFailures(t *testing.T) {
	next := &scriptedRequester{errs: []error{
		&StatusError{Endpoint: EndpointSearch, Code: http.StatusServiceUnavailable},
		fmt.Errorf("dial: %w", domain.ErrNetwork),
	}}
	r := NewRetrying(next, 3, WithBackOff(zeroBackOff))

	err := r.Request(context.Background(), EndpointSearch, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, next.calls)
}

func TestRetrying_StopsAfterMaxRetries(t *testing.T) {
	failure := &StatusError{Endpoint: EndpointSearch, Code: http.StatusTooManyRequests}
	next := &scriptedRequester{errs: []error{failure, failure, failure, failure, failure}}
	r := NewRetrying(next, 2, WithBackOff(zeroBackOff))

	err := r.Request(context.Background(), EndpointSearch, nil, nil)
	assert.True(t, errors.Is(err, domain.ErrNetwork))
	assert.Equal(t, 3, next.calls, "one attempt plus two retries")
}

func TestRetrying_PermanentFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "malformed", err: fmt.Errorf("x: %w", domain.ErrMalformedResponse)},
		{name: "not found status", err: &StatusError{Endpoint: EndpointSearch, Code: http.StatusNotFound}},
		{name: "cancelled", err: fmt.Errorf("wait: %w", context.Canceled)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &scriptedRequester{errs: []error{tt.err, tt.err}}
			r := NewRetrying(next, 5, WithBackOff(zeroBackOff))

			err := r.Request(context.Background(), EndpointSearch, nil, nil)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, 1, next.calls)
		})
	}
}

func TestRetrying_ZeroRetriesPassesThrough(t *testing.T) {
	failure := fmt.Errorf("dial: %w", domain.ErrNetwork)
	next := &scriptedRequester{errs: []error{failure}}
	r := NewRetrying(next, 0)

	err := r.Request(context.Background(), EndpointSearch, nil, nil)
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, 1, next.calls)
}

func TestRetryable(t *testing.T) {
	assert.False(t, Retryable(nil))
	assert.True(t, Retryable(fmt.Errorf("x: %w", domain.ErrNetwork)))
	assert.True(t, Retryable(&StatusError{Code: 500}))
	assert.True(t, Retryable(&StatusError{Code: 429}))
	assert.False(t, Retryable(&StatusError{Code: 400}))
	assert.False(t, Retryable(fmt.Errorf("x: %w", domain.ErrMalformedResponse)))
	assert.False(t, Retryable(fmt.Errorf("x: %w: %w", domain.ErrNetwork, context.Canceled)))
}
