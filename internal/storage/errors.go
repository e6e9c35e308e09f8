package storage

import "crypto-tracker/internal/domain"

// Storage errors. They alias the domain taxonomy so callers can branch with
// errors.Is against either name.
var (
	// ErrCorruptState is returned when persisted state exists but is not a
	// JSON array of strings (or the backend equivalent).
	ErrCorruptState = domain.ErrCorruptState

	// ErrInvalidInput is returned when store configuration is incomplete.
	ErrInvalidInput = domain.ErrInvalidInput
)
