package history

import "errors"

// Common errors returned by the history package.
var (
	// ErrNilResult is returned when a nil result is journaled as completed.
	ErrNilResult = errors.New("run result is required")
	// ErrRunNotFound is returned when finalizing a run that was never
	// recorded as started.
	ErrRunNotFound = errors.New("run not found")
)
