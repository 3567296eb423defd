package motion

import "math"

// Movement describes the intent for one actuator within one Action.
//
// Movements are immutable values. Only the stop predicate may observe
// mutable state.
type Movement struct {
	target    float64
	relative  bool
	stopCheck func() bool
}

// To moves to an absolute target (degrees or percent).
func To(target float64) Movement {
	return Movement{target: target}
}

// By moves by offset relative to the position at the start of the Action.
func By(offset float64) Movement {
	return Movement{target: offset, relative: true}
}

// Until moves toward target and finishes early as soon as check returns true.
func Until(target float64, check func() bool) Movement {
	return Movement{target: target, stopCheck: check}
}

// ForwardUntil runs toward +Inf until check returns true.
func ForwardUntil(check func() bool) Movement {
	return Until(math.Inf(1), check)
}

// BackwardUntil runs toward -Inf until check returns true.
func BackwardUntil(check func() bool) Movement {
	return Until(math.Inf(-1), check)
}

// WithStopCheck returns a copy of m that also finishes when check returns true.
func (m Movement) WithStopCheck(check func() bool) Movement {
	m.stopCheck = check
	return m
}

// Target returns the configured target (an offset when Relative).
func (m Movement) Target() float64 { return m.target }

// Relative reports whether Target is an offset from the current position.
func (m Movement) Relative() bool { return m.relative }

// HasStopCheck reports whether the movement carries a stop predicate.
func (m Movement) HasStopCheck() bool { return m.stopCheck != nil }

// Stopped evaluates the stop predicate.
func (m Movement) Stopped() bool {
	return m.stopCheck != nil && m.stopCheck()
}

// Resolve returns the absolute target for an actuator currently at position.
func (m Movement) Resolve(position float64) float64 {
	if m.relative {
		return position + m.target
	}
	return m.target
}
