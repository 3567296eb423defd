package rig

import "errors"

var (
	// ErrUnknownActuator is returned when a name matches no configured actuator.
	ErrUnknownActuator = errors.New("rig: unknown actuator")

	// ErrUnknownRotator is returned when a name matches no smooth rotator.
	ErrUnknownRotator = errors.New("rig: unknown smooth rotator")

	// ErrUnknownSequence is returned when a name matches no library sequence.
	ErrUnknownSequence = errors.New("rig: unknown sequence")

	// ErrUnknownScene is returned when a name matches no library scene.
	ErrUnknownScene = errors.New("rig: unknown scene")

	// ErrUnknownTrigger is returned when a name matches no declared trigger.
	ErrUnknownTrigger = errors.New("rig: unknown trigger")

	// ErrDisabled is returned by PreExecution while the rig is disabled.
	ErrDisabled = errors.New("rig: disabled")

	// ErrClosed is returned once the rig has been released.
	ErrClosed = errors.New("rig: closed")
)
