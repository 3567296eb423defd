package smooth

import "errors"

var (
	// ErrBusy is returned when a rotator already has a task in flight.
	ErrBusy = errors.New("smooth: rotator busy")

	// ErrKilled is recorded on tasks stopped by a kill switch or cancel.
	ErrKilled = errors.New("smooth: killed")

	// ErrStopped is returned when scheduling on a stopped scheduler.
	ErrStopped = errors.New("smooth: scheduler stopped")

	// ErrInvalidMove is returned for moves with a NaN target or no rotator.
	ErrInvalidMove = errors.New("smooth: invalid move")
)
