package smooth

// DefaultLanding is the fraction of a move spent decelerating.
const DefaultLanding = 0.2

// SoftLanding maps elapsed time to progress. Progress is linear until the
// last Landing fraction of the move, then decelerates at a constant rate to
// zero velocity at the end. The cruise velocity 1/(1-Landing/2) keeps the
// curve continuous in both position and velocity.
type SoftLanding struct {
	Landing float64
}

// Progress returns the completed fraction of the move at time fraction t.
// t is clamped to [0, 1].
func (p SoftLanding) Progress(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	}

	l := p.Landing
	if l <= 0 {
		return t
	}
	if l > 1 {
		l = 1
	}

	v := 1 / (1 - l/2)
	if t <= 1-l {
		return v * t
	}
	rem := 1 - t
	return 1 - v*rem*rem/(2*l)
}
