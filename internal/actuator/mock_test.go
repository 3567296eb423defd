package actuator

import (
	"context"
	"errors"
)

var errBus = errors.New("bus timeout")

// recordingStepper counts steps in each direction.
type recordingStepper struct {
	forward  int
	backward int
	released bool
	failAt   int // fail on the Nth step (1-based); 0 disables
}

func (r *recordingStepper) Step(ctx context.Context, forward bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.failAt > 0 && r.forward+r.backward+1 == r.failAt {
		return errBus
	}
	if forward {
		r.forward++
	} else {
		r.backward++
	}
	return nil
}

func (r *recordingStepper) Release(context.Context) error {
	r.released = true
	return nil
}

// recordingServo tracks every angle written.
type recordingServo struct {
	angle   float64
	writes  []float64
	readErr error
	failAt  int // fail on the Nth write (1-based); 0 disables
}

func (r *recordingServo) Angle(context.Context) (float64, error) {
	return r.angle, r.readErr
}

func (r *recordingServo) SetAngle(_ context.Context, deg float64) error {
	if r.failAt > 0 && len(r.writes)+1 == r.failAt {
		return errBus
	}
	r.writes = append(r.writes, deg)
	r.angle = deg
	return nil
}

func (r *recordingServo) Release(context.Context) error { return nil }
