package motion

import (
	"context"

	"github.com/nerrad567/gray-motion-core/internal/actuator"
)

type pairState struct {
	actuator actuator.Actuator
	movement Movement
	target   float64
	done     bool
}

// Stepper advances an Action one tick at a time.
//
// Relative targets are resolved against each actuator's position when the
// Stepper is created. A pair that has completed is skipped on later ticks.
type Stepper struct {
	pairs     []pairState
	remaining int
	ticks     int
}

// NewStepper prepares a to be stepped.
func NewStepper(a Action) *Stepper {
	s := &Stepper{
		pairs:     make([]pairState, len(a.pairs)),
		remaining: len(a.pairs),
	}
	for i, p := range a.pairs {
		s.pairs[i] = pairState{
			actuator: p.Actuator,
			movement: p.Movement,
			target:   p.Movement.Resolve(p.Actuator.Position()),
		}
	}
	return s
}

// Step calls every incomplete pair's actuator exactly once, in insertion
// order. It returns true while any pair is still incomplete and false once
// all have completed, so callers loop with:
//
//	for {
//	    more, err := s.Step(ctx)
//	    if err != nil || !more { break }
//	}
//
// A pair whose stop predicate is true completes without touching its
// actuator. A hardware failure aborts the tick and returns a *StepError.
func (s *Stepper) Step(ctx context.Context) (bool, error) {
	if s.remaining == 0 {
		return false, nil
	}
	s.ticks++

	for i := range s.pairs {
		p := &s.pairs[i]
		if p.done {
			continue
		}
		if p.movement.Stopped() {
			s.complete(p)
			continue
		}

		done, err := p.actuator.Advance(ctx, p.target)
		if err != nil {
			return false, &StepError{Actuator: p.actuator.Name(), Pair: i, Err: err}
		}
		if done {
			s.complete(p)
		}
	}

	return s.remaining > 0, nil
}

func (s *Stepper) complete(p *pairState) {
	p.done = true
	s.remaining--
}

// Done reports whether every pair has completed.
func (s *Stepper) Done() bool { return s.remaining == 0 }

// Ticks returns how many ticks performed work.
func (s *Stepper) Ticks() int { return s.ticks }

// Remaining returns the number of incomplete pairs.
func (s *Stepper) Remaining() int { return s.remaining }
