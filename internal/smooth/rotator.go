package smooth

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/nerrad567/gray-motion-core/internal/actuator"
)

// Config describes a smooth rotator's travel.
type Config struct {
	Home    float64
	Maximum float64
}

// Rotator is a servo driven by absolute angle writes.
type Rotator struct {
	name   string
	driver actuator.ServoDriver
	lo, hi float64

	mu    sync.Mutex
	angle float64
}

// NewRotator reads the servo's current angle and returns a Rotator bounded
// to [min(Home, Maximum), max(Home, Maximum)].
func NewRotator(ctx context.Context, name string, driver actuator.ServoDriver, cfg Config) (*Rotator, error) {
	angle, err := driver.Angle(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading angle: %w", actuator.ErrHardwareIO, name, err)
	}
	return &Rotator{
		name:   name,
		driver: driver,
		lo:     math.Min(cfg.Home, cfg.Maximum),
		hi:     math.Max(cfg.Home, cfg.Maximum),
		angle:  angle,
	}, nil
}

// Name returns the rotator name.
func (r *Rotator) Name() string { return r.name }

// Angle returns the last angle written or read.
func (r *Rotator) Angle() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.angle
}

// Bounds returns the travel limits.
func (r *Rotator) Bounds() (lo, hi float64) { return r.lo, r.hi }

// Clamp limits angle to the travel range.
func (r *Rotator) Clamp(angle float64) float64 {
	return math.Max(r.lo, math.Min(r.hi, angle))
}

func (r *Rotator) set(ctx context.Context, angle float64) error {
	angle = r.Clamp(angle)
	if err := r.driver.SetAngle(ctx, angle); err != nil {
		return fmt.Errorf("%w: %s: %w", actuator.ErrHardwareIO, r.name, err)
	}
	r.mu.Lock()
	r.angle = angle
	r.mu.Unlock()
	return nil
}

// Release de-energises the servo.
func (r *Rotator) Release(ctx context.Context) error {
	if err := r.driver.Release(ctx); err != nil {
		return fmt.Errorf("%w: %s: release: %w", actuator.ErrHardwareIO, r.name, err)
	}
	return nil
}
