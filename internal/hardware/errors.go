package hardware

import "errors"

var (
	// ErrServoNotFound is returned when a servo ID did not answer the bus scan.
	ErrServoNotFound = errors.New("hardware: servo not found on bus")

	// ErrPinNotFound is returned when a GPIO pin name is unknown to the host.
	ErrPinNotFound = errors.New("hardware: gpio pin not found")

	// ErrSimulatedFault is the default error injected into simulated drivers.
	ErrSimulatedFault = errors.New("hardware: simulated fault")
)
