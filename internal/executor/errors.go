package executor

import "errors"

// Domain errors for the executor package.
var (
	// ErrShutdown is returned when submitting to an executor that has shut down.
	ErrShutdown = errors.New("executor: shut down")

	// ErrQueueFull is returned when the intake queue has no free slot.
	ErrQueueFull = errors.New("executor: queue full")

	// ErrRefused is recorded on events for requests CanRun rejected.
	ErrRefused = errors.New("executor: refused by gate")

	// ErrPreempted is recorded on events for runs abandoned for an emergency request.
	ErrPreempted = errors.New("executor: preempted")

	// ErrCancelled is recorded on events for queued requests that never ran.
	ErrCancelled = errors.New("executor: cancelled before start")

	// ErrAlreadyRunning is returned when Run is called twice.
	ErrAlreadyRunning = errors.New("executor: already running")
)
