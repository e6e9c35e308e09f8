package coingecko

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"crypto-tracker/internal/domain"
)

// StatusError is returned when the provider answers with a non-2xx status.
// It unwraps to domain.ErrNetwork.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Endpoint, e.Code, e.Body)
}

// Unwrap makes errors.Is(err, domain.ErrNetwork) hold for status errors.
func (e *StatusError) Unwrap() error {
	return domain.ErrNetwork
}

// Retryable reports whether err is a transient provider failure: a
// transport error, 429, or 5xx. Malformed bodies, other 4xx statuses and
// caller cancellation are permanent.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}
	return errors.Is(err, domain.ErrNetwork)
}
