package domain

import "errors"

// Failure taxonomy shared by all components. Callers branch with errors.Is.
var (
	// ErrNetwork is returned for connection failures, timeouts and non-2xx
	// provider responses.
	ErrNetwork = errors.New("network failure")

	// ErrMalformedResponse is returned when a provider body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrNotFound is returned when a free-text query matched no coin.
	ErrNotFound = errors.New("not found")

	// ErrCorruptState is returned by watchlist backends when persisted state
	// exists but cannot be decoded.
	ErrCorruptState = errors.New("corrupt watchlist state")

	// ErrInvalidInput is returned when caller input fails validation.
	ErrInvalidInput = errors.New("invalid input")
)
