package actuator

import (
	"context"
	"fmt"
	"math"
)

const fullExtension = 100.0

// ServoLinear is a LinearActuator built on a ServoRotator.
//
// 0% sits at the servo's home angle and 100% at its maximum angle. When
// maximum is below home the servo turns the other way to extend.
type ServoLinear struct {
	servo *ServoRotator
	home  float64
	swing float64
}

// NewServoLinear wraps servo as a linear extender.
func NewServoLinear(servo *ServoRotator) *ServoLinear {
	cfg := servo.Config()
	return &ServoLinear{
		servo: servo,
		home:  cfg.Home,
		swing: cfg.Maximum - cfg.Home,
	}
}

// Name returns the actuator name.
func (l *ServoLinear) Name() string { return l.servo.Name() }

// Current returns the extension derived from the servo angle.
func (l *ServoLinear) Current() float64 {
	if l.swing == 0 {
		return 0
	}
	return clamp((l.servo.Current()-l.home)/l.swing*fullExtension, 0, fullExtension)
}

// ExtendTo moves the underlying servo one increment toward percentage.
func (l *ServoLinear) ExtendTo(ctx context.Context, percentage float64) (bool, error) {
	if math.IsNaN(percentage) {
		return false, fmt.Errorf("%w: %s: NaN", ErrInvalidTarget, l.Name())
	}
	pct := clamp(percentage, 0, fullExtension)
	return l.servo.MoveTowards(ctx, l.home+pct/fullExtension*l.swing)
}

// Release releases the underlying servo.
func (l *ServoLinear) Release(ctx context.Context) error {
	return l.servo.Release(ctx)
}
