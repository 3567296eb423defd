package motion

import (
	"context"
	"errors"

	"github.com/nerrad567/gray-motion-core/internal/actuator"
)

var errJam = errors.New("jammed")

// unitRotator moves one degree per call and logs every write.
type unitRotator struct {
	name   string
	pos    float64
	writes int
	log    *[]string
	failAt int // fail on the Nth write (1-based); 0 disables
}

func (u *unitRotator) Name() string     { return u.name }
func (u *unitRotator) Current() float64 { return u.pos }

func (u *unitRotator) MoveTowards(_ context.Context, target float64) (bool, error) {
	if u.pos == target {
		return true, nil
	}
	if u.failAt > 0 && u.writes+1 == u.failAt {
		return false, errJam
	}
	if target > u.pos {
		u.pos++
	} else {
		u.pos--
	}
	u.writes++
	if u.log != nil {
		*u.log = append(*u.log, u.name)
	}
	return u.pos == target, nil
}

func (u *unitRotator) Release(context.Context) error { return nil }

func rot(name string, pos float64) (*unitRotator, actuator.Actuator) {
	u := &unitRotator{name: name, pos: pos}
	return u, actuator.OfRotator(u)
}
