package actuator

import (
	"context"
	"fmt"
	"math"
)

const degreesPerRotation = 360.0

// StepperConfig describes a stepper-backed rotator.
type StepperConfig struct {
	// StepsPerRotation is the motor's full steps per shaft revolution (e.g. 200).
	StepsPerRotation int

	// GearRatio is motor revolutions per output revolution. Zero means 1:1.
	GearRatio float64

	// StepsPerIncrement is how many electrical steps one MoveTowards call
	// issues. Zero derives it from the gear ratio (at least 1).
	StepsPerIncrement int

	// StartAngle seeds the step counter; there is no feedback to read it from.
	StartAngle float64
}

// StepperRotator is an open-loop Rotator driven by a StepperDriver.
//
// Angles map to step indices with floor rounding: angle a sits on step
// floor(a * stepsPerRotation * gearRatio / 360). The internal step counter
// is the only source of truth for Current.
type StepperRotator struct {
	name        string
	driver      StepperDriver
	stepsPerRev float64
	increment   int
	position    int
}

// NewStepperRotator creates a stepper rotator.
func NewStepperRotator(name string, driver StepperDriver, cfg StepperConfig) (*StepperRotator, error) {
	if driver == nil {
		return nil, fmt.Errorf("%w: %s: driver is required", ErrInvalidConfig, name)
	}
	if cfg.StepsPerRotation <= 0 {
		return nil, fmt.Errorf("%w: %s: steps per rotation must be positive", ErrInvalidConfig, name)
	}
	gear := cfg.GearRatio
	if gear == 0 {
		gear = 1
	}
	if gear < 0 {
		return nil, fmt.Errorf("%w: %s: gear ratio must be positive", ErrInvalidConfig, name)
	}

	increment := cfg.StepsPerIncrement
	if increment <= 0 {
		increment = max(1, int(math.Round(gear)))
	}

	s := &StepperRotator{
		name:        name,
		driver:      driver,
		stepsPerRev: float64(cfg.StepsPerRotation) * gear,
		increment:   increment,
	}
	s.position = s.stepIndex(cfg.StartAngle)
	return s, nil
}

// Name returns the actuator name.
func (s *StepperRotator) Name() string { return s.name }

// Current returns the angle of the current step.
func (s *StepperRotator) Current() float64 {
	return float64(s.position) * degreesPerRotation / s.stepsPerRev
}

// Steps returns the raw step counter.
func (s *StepperRotator) Steps() int { return s.position }

// Home redefines the current physical position as angle without moving.
func (s *StepperRotator) Home(angle float64) {
	s.position = s.stepIndex(angle)
}

func (s *StepperRotator) stepIndex(angle float64) int {
	return int(math.Floor(angle * s.stepsPerRev / degreesPerRotation))
}

// MoveTowards issues up to StepsPerIncrement steps toward target.
//
// An infinite target steps in its direction forever and never reports done;
// such movements finish through their stop predicate.
func (s *StepperRotator) MoveTowards(ctx context.Context, target float64) (bool, error) {
	if math.IsNaN(target) {
		return false, fmt.Errorf("%w: %s: NaN", ErrInvalidTarget, s.name)
	}

	unbounded := math.IsInf(target, 0)
	var goal, remaining int
	forward := target > 0
	if unbounded {
		remaining = s.increment
	} else {
		goal = s.stepIndex(target)
		if goal == s.position {
			return true, nil
		}
		forward = goal > s.position
		remaining = goal - s.position
		if remaining < 0 {
			remaining = -remaining
		}
	}

	dir := 1
	if !forward {
		dir = -1
	}
	for range min(s.increment, remaining) {
		if err := s.driver.Step(ctx, forward); err != nil {
			if cancelled(ctx, err) {
				return false, err
			}
			return false, fmt.Errorf("%w: %s: %w", ErrHardwareIO, s.name, err)
		}
		s.position += dir
	}

	if unbounded {
		return false, nil
	}
	return s.position == goal, nil
}

// Release de-energises the motor.
func (s *StepperRotator) Release(ctx context.Context) error {
	if err := s.driver.Release(ctx); err != nil {
		return fmt.Errorf("%w: %s: release: %w", ErrHardwareIO, s.name, err)
	}
	return nil
}
