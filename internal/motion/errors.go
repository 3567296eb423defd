package motion

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSpeed is returned when a speed name cannot be parsed.
	ErrUnknownSpeed = errors.New("motion: unknown speed")

	// ErrActionIndex is returned when a sequence is asked for an action it does not have.
	ErrActionIndex = errors.New("motion: action index out of range")
)

// StepError reports a failed increment during a tick. It identifies the
// actuator and its position within the Action.
type StepError struct {
	Actuator string
	Pair     int
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("motion: step %s (pair %d): %v", e.Actuator, e.Pair, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
