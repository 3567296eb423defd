package actuator

import (
	"context"
	"errors"
)

// Domain errors for the actuator package.
var (
	// ErrHardwareIO wraps any failure reported by a driver call.
	// The increment that failed is treated as not having progressed.
	ErrHardwareIO = errors.New("actuator: hardware I/O failed")

	// ErrInvalidTarget is returned when a target is NaN.
	ErrInvalidTarget = errors.New("actuator: invalid target")

	// ErrInvalidConfig is returned when an actuator is constructed with
	// unusable parameters (zero steps per rotation, negative delta, etc.).
	ErrInvalidConfig = errors.New("actuator: invalid config")
)

// cancelled reports whether err is ctx ending rather than a hardware fault.
func cancelled(ctx context.Context, err error) bool {
	ctxErr := ctx.Err()
	return ctxErr != nil && errors.Is(err, ctxErr)
}
