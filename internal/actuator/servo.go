package actuator

import (
	"context"
	"fmt"
	"math"
)

// ServoConfig describes a servo-backed rotator.
//
// Home and Maximum may be given in either order; the usable range is always
// [min(Home, Maximum), max(Home, Maximum)].
type ServoConfig struct {
	Home    float64
	Maximum float64

	// Delta is the angle moved per increment. Zero means every move is a
	// single absolute jump.
	Delta float64

	// Precision is the fuzzy-equality tolerance. Zero means DefaultPrecision.
	Precision float64
}

// ServoRotator is a Rotator driven by a positional servo.
//
// Current reports the last commanded angle. The servo is read once at
// construction so the first move starts from the real position.
type ServoRotator struct {
	name      string
	driver    ServoDriver
	cfg       ServoConfig
	lo, hi    float64
	precision float64
	angle     float64
}

// NewServoRotator creates a servo rotator, reading the initial angle from the driver.
func NewServoRotator(ctx context.Context, name string, driver ServoDriver, cfg ServoConfig) (*ServoRotator, error) {
	if driver == nil {
		return nil, fmt.Errorf("%w: %s: driver is required", ErrInvalidConfig, name)
	}
	if cfg.Delta < 0 {
		return nil, fmt.Errorf("%w: %s: delta must not be negative", ErrInvalidConfig, name)
	}
	if cfg.Precision < 0 {
		return nil, fmt.Errorf("%w: %s: precision must not be negative", ErrInvalidConfig, name)
	}

	angle, err := driver.Angle(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading initial angle: %w", ErrHardwareIO, name, err)
	}

	precision := cfg.Precision
	if precision == 0 {
		precision = DefaultPrecision
	}

	return &ServoRotator{
		name:      name,
		driver:    driver,
		cfg:       cfg,
		lo:        math.Min(cfg.Home, cfg.Maximum),
		hi:        math.Max(cfg.Home, cfg.Maximum),
		precision: precision,
		angle:     angle,
	}, nil
}

// Name returns the actuator name.
func (s *ServoRotator) Name() string { return s.name }

// Current returns the last commanded angle.
func (s *ServoRotator) Current() float64 { return s.angle }

// Config returns the servo's configuration.
func (s *ServoRotator) Config() ServoConfig { return s.cfg }

// Bounds returns the usable range as (low, high).
func (s *ServoRotator) Bounds() (float64, float64) { return s.lo, s.hi }

// Clamp limits angle to the servo's bounds.
func (s *ServoRotator) Clamp(angle float64) float64 {
	return clamp(angle, s.lo, s.hi)
}

// MoveTowards nudges the servo one delta toward target (clamped to bounds).
//
// A target within delta (or within precision when delta is unset) of the
// current angle reports done without touching the hardware. When the clamped
// target cannot be approached any further the move also reports done.
func (s *ServoRotator) MoveTowards(ctx context.Context, target float64) (bool, error) {
	if math.IsNaN(target) {
		return false, fmt.Errorf("%w: %s: NaN", ErrInvalidTarget, s.name)
	}
	goal := s.Clamp(target)

	if s.cfg.Delta == 0 {
		if AlmostEqual(s.angle, goal, s.precision) {
			return true, nil
		}
		if err := s.write(ctx, goal); err != nil {
			return false, err
		}
		return true, nil
	}

	if s.arrived(goal) {
		return true, nil
	}

	next := s.Clamp(s.angle + math.Copysign(s.cfg.Delta, goal-s.angle))
	if next == s.angle {
		return true, nil
	}
	if err := s.write(ctx, next); err != nil {
		return false, err
	}
	return s.arrived(goal), nil
}

func (s *ServoRotator) arrived(goal float64) bool {
	return math.Abs(goal-s.angle) < s.cfg.Delta || AlmostEqual(s.angle, goal, s.precision)
}

func (s *ServoRotator) write(ctx context.Context, angle float64) error {
	if err := s.driver.SetAngle(ctx, angle); err != nil {
		if cancelled(ctx, err) {
			return err
		}
		return fmt.Errorf("%w: %s: set angle %.2f: %w", ErrHardwareIO, s.name, angle, err)
	}
	s.angle = angle
	return nil
}

// Release removes holding torque from the servo.
func (s *ServoRotator) Release(ctx context.Context) error {
	if err := s.driver.Release(ctx); err != nil {
		return fmt.Errorf("%w: %s: release: %w", ErrHardwareIO, s.name, err)
	}
	return nil
}
