package actuator

import "context"

// ServoDriver is the hardware boundary for a single positional servo.
// All calls may block on the underlying bus.
type ServoDriver interface {
	// Angle reads the servo's present position in degrees.
	Angle(ctx context.Context) (float64, error)

	// SetAngle commands the servo to the given angle in degrees.
	SetAngle(ctx context.Context, degrees float64) error

	// Release removes holding torque.
	Release(ctx context.Context) error
}

// StepperDriver is the hardware boundary for a single stepper motor.
type StepperDriver interface {
	// Step issues one electrical step in the given direction.
	Step(ctx context.Context, forward bool) error

	// Release de-energises the coils.
	Release(ctx context.Context) error
}
