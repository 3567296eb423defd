package history

import "errors"

var (
	// ErrInvalidRun is returned when a run is missing its run or sequence ID.
	ErrInvalidRun = errors.New("history: run id and sequence are required")

	// ErrInvalidRetention is returned when pruning with a non-positive age.
	ErrInvalidRetention = errors.New("history: retention must be positive")
)
