// Package hardware provides the concrete drivers behind actuator.ServoDriver
// and actuator.StepperDriver:
//
//   - FeetechServo: STS serial bus servos (hipsterbrown/feetech-servo)
//   - GPIOStepper: step/dir/enable stepper drivers on GPIO pins (periph.io)
//   - SimServo and SimStepper: in-memory drivers for tests and dry runs
//
// Every call blocks on the underlying bus. Drivers sharing one serial bus
// serialise their transactions through the bus lock.
package hardware
