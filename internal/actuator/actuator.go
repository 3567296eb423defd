package actuator

import (
	"context"
	"math"
)

// DefaultPrecision is the fuzzy-equality tolerance (in domain units) used when
// a config does not specify one.
const DefaultPrecision = 0.1

// Kind identifies which capability an Actuator variant carries.
type Kind string

const (
	KindRotator Kind = "rotator"
	KindLinear  Kind = "linear"
)

// Rotator is an actuator whose position is an angle in degrees.
type Rotator interface {
	Name() string

	// Current returns the present angle. It must not block on hardware.
	Current() float64

	// MoveTowards performs one bounded increment toward target and reports
	// whether the target has been reached (within tolerance). It is safe to
	// call repeatedly until it returns true.
	MoveTowards(ctx context.Context, target float64) (bool, error)

	Release(ctx context.Context) error
}

// LinearActuator is an actuator whose position is an extension percentage.
type LinearActuator interface {
	Name() string

	// Current returns the present extension in the range [0, 100].
	Current() float64

	// ExtendTo performs one bounded increment toward percentage and reports
	// whether it has been reached.
	ExtendTo(ctx context.Context, percentage float64) (bool, error)

	Release(ctx context.Context) error
}

// Actuator is the sealed variant over Rotator and LinearActuator.
//
// Only OfRotator and OfLinear produce values of this type, so the set of
// capabilities the engine handles is closed and needs no runtime inspection.
type Actuator interface {
	Name() string
	Kind() Kind

	// Position returns the current position in the variant's domain units.
	Position() float64

	// Advance dispatches to MoveTowards or ExtendTo.
	Advance(ctx context.Context, target float64) (bool, error)

	Release(ctx context.Context) error

	sealed()
}

// OfRotator wraps a Rotator as an Actuator.
func OfRotator(r Rotator) Actuator { return rotatorVariant{r: r} }

// OfLinear wraps a LinearActuator as an Actuator.
func OfLinear(l LinearActuator) Actuator { return linearVariant{l: l} }

type rotatorVariant struct{ r Rotator }

func (v rotatorVariant) Name() string      { return v.r.Name() }
func (v rotatorVariant) Kind() Kind        { return KindRotator }
func (v rotatorVariant) Position() float64 { return v.r.Current() }
func (v rotatorVariant) Release(ctx context.Context) error {
	return v.r.Release(ctx)
}
func (v rotatorVariant) Advance(ctx context.Context, target float64) (bool, error) {
	return v.r.MoveTowards(ctx, target)
}
func (rotatorVariant) sealed() {}

type linearVariant struct{ l LinearActuator }

func (v linearVariant) Name() string      { return v.l.Name() }
func (v linearVariant) Kind() Kind        { return KindLinear }
func (v linearVariant) Position() float64 { return v.l.Current() }
func (v linearVariant) Release(ctx context.Context) error {
	return v.l.Release(ctx)
}
func (v linearVariant) Advance(ctx context.Context, target float64) (bool, error) {
	return v.l.ExtendTo(ctx, target)
}
func (linearVariant) sealed() {}

// AlmostEqual reports whether a and b differ by no more than precision.
func AlmostEqual(a, b, precision float64) bool {
	return math.Abs(a-b) <= precision
}

// clamp limits v to [lo, hi]. Infinite values land on the matching bound.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
