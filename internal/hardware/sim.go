package hardware

import (
	"context"
	"sync"
)

// SimServo is an in-memory servo that reaches every commanded angle at once.
type SimServo struct {
	mu       sync.Mutex
	angle    float64
	writes   int
	released bool
	fault    error
}

// NewSimServo returns a simulated servo resting at angle.
func NewSimServo(angle float64) *SimServo {
	return &SimServo{angle: angle}
}

// Angle returns the simulated position.
func (s *SimServo) Angle(context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFault(); err != nil {
		return 0, err
	}
	return s.angle, nil
}

// SetAngle moves the simulated servo.
func (s *SimServo) SetAngle(_ context.Context, degrees float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFault(); err != nil {
		return err
	}
	s.angle = degrees
	s.writes++
	s.released = false
	return nil
}

// Release marks the servo as released.
func (s *SimServo) Release(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = true
	return nil
}

// Fail makes the next read or write return err (ErrSimulatedFault when nil).
func (s *SimServo) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		err = ErrSimulatedFault
	}
	s.fault = err
}

// Writes returns the number of successful writes.
func (s *SimServo) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Released reports whether the servo is currently released.
func (s *SimServo) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

func (s *SimServo) takeFault() error {
	err := s.fault
	s.fault = nil
	return err
}

// SimStepper is an in-memory stepper that counts net steps.
type SimStepper struct {
	mu       sync.Mutex
	position int
	steps    int
	released bool
	fault    error
}

// NewSimStepper returns a simulated stepper at step 0.
func NewSimStepper() *SimStepper {
	return &SimStepper{}
}

// Step moves one step.
func (s *SimStepper) Step(_ context.Context, forward bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fault != nil {
		err := s.fault
		s.fault = nil
		return err
	}
	if forward {
		s.position++
	} else {
		s.position--
	}
	s.steps++
	s.released = false
	return nil
}

// Release marks the coils de-energised.
func (s *SimStepper) Release(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = true
	return nil
}

// Fail makes the next step return err (ErrSimulatedFault when nil).
func (s *SimStepper) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		err = ErrSimulatedFault
	}
	s.fault = err
}

// Position returns the net step count.
func (s *SimStepper) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// Steps returns the total number of steps taken in either direction.
func (s *SimStepper) Steps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps
}

// Released reports whether the coils are de-energised.
func (s *SimStepper) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}
