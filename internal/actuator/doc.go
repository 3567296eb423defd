// Package actuator provides the capability abstraction the motion engine drives.
//
// Two capabilities exist: Rotator (angular position in degrees) and
// LinearActuator (extension in percent, 0-100). Both expose a single
// incremental primitive that performs one bounded increment of real motion
// and reports whether the target has been reached. Callers loop on the
// primitive until it returns true.
//
// The engine never sees these interfaces directly. It works with the sealed
// Actuator variant returned by OfRotator and OfLinear, which is the closed set
// of things a Movement can target.
//
// # Implementations
//
//   - StepperRotator: open-loop, step counter is the source of truth
//   - ServoRotator: commanded angle with home/maximum bounds and optional delta
//   - ServoLinear: a linear extender built on a ServoRotator
//
// Concrete motor technology lives behind ServoDriver and StepperDriver,
// implemented by the hardware package.
//
// # Thread Safety
//
// None of the types in this package are safe for concurrent use. Each
// actuator has exactly one writer: the executor that owns it.
package actuator
