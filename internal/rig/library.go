package rig

import (
	"fmt"
	"time"

	"github.com/nerrad567/gray-motion-core/internal/actuator"
	"github.com/nerrad567/gray-motion-core/internal/executor"
	"github.com/nerrad567/gray-motion-core/internal/infrastructure/config"
	"github.com/nerrad567/gray-motion-core/internal/motion"
	"github.com/nerrad567/gray-motion-core/internal/smooth"
)

// haltSequence names the empty emergency submitted when no stop sequence
// is configured.
const haltSequence = "halt"

// SequenceInfo describes a library sequence.
type SequenceInfo struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Interruptable bool     `json:"interruptable"`
	Stop          bool     `json:"stop"`
	Actions       []string `json:"actions"`
}

// Sequences describes every library sequence in configuration order.
func (r *Rig) Sequences() []SequenceInfo {
	out := make([]SequenceInfo, 0, len(r.seqOrder))
	for _, name := range r.seqOrder {
		sc := r.sequences[name]
		info := SequenceInfo{
			Name:          sc.Name,
			Description:   sc.Description,
			Interruptable: sc.IsInterruptable() && !r.isStop(name),
			Stop:          r.isStop(name),
			Actions:       make([]string, 0, len(sc.Actions)),
		}
		for _, ac := range sc.Actions {
			info.Actions = append(info.Actions, ac.Name)
		}
		out = append(out, info)
	}
	return out
}

// SceneNames returns the library scene names in configuration order.
func (r *Rig) SceneNames() []string {
	return append([]string(nil), r.sceneOrder...)
}

func (r *Rig) isStop(name string) bool {
	return name == r.cfg.Executor.StopSequence
}

// Sequence builds a fresh motion.Sequence for a library entry.
func (r *Rig) Sequence(name string) (motion.Sequence, error) {
	sc, ok := r.sequences[name]
	if !ok {
		return motion.Sequence{}, fmt.Errorf("%w: %s", ErrUnknownSequence, name)
	}
	return r.buildSequence(sc)
}

// Request builds an executor request for a library sequence. The stop
// sequence and sequences declared non-interruptable become emergency
// requests.
func (r *Rig) Request(name, source string) (executor.Request, error) {
	if r.closed.Load() {
		return executor.Request{}, ErrClosed
	}
	seq, err := r.Sequence(name)
	if err != nil {
		return executor.Request{}, err
	}
	if r.isStop(name) || !r.sequences[name].IsInterruptable() {
		return executor.EmergencyRequest(seq, source), nil
	}
	return executor.NewRequest(seq, source), nil
}

// Stop sets the kill flag, stopping scenes at their next tick, and
// returns the emergency request for the stop sequence. When the library has
// no stop sequence the request carries an empty sequence, which still
// preempts an interruptable run in progress.
func (r *Rig) Stop(source string) (executor.Request, error) {
	r.Kill()
	r.logger.Warn("emergency stop", "source", source)

	name := r.cfg.Executor.StopSequence
	if _, ok := r.sequences[name]; !ok {
		return executor.EmergencyRequest(motion.NewSequence(haltSequence).Build(), source), nil
	}
	return r.Request(name, source)
}

// Scene resolves a library scene into smooth moves.
func (r *Rig) Scene(name string) ([]smooth.Move, error) {
	sc, ok := r.scenes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScene, name)
	}

	moves := make([]smooth.Move, 0, len(sc.Moves))
	for i, m := range sc.Moves {
		rot, err := r.Rotator(m.Rotator)
		if err != nil {
			return nil, fmt.Errorf("scene %q move %d: %w", name, i, err)
		}
		moves = append(moves, smooth.Move{
			Rotator:  rot,
			Target:   m.To,
			Duration: time.Duration(m.DurationMS) * time.Millisecond,
		})
	}
	return moves, nil
}

// PlayScene clears the kill flag and schedules a library scene.
func (r *Rig) PlayScene(s *smooth.Scheduler, name string) (*smooth.Scene, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	moves, err := r.Scene(name)
	if err != nil {
		return nil, err
	}
	r.killed.Store(false)
	return smooth.Play(s, name, moves...)
}

func (r *Rig) buildSequence(sc config.SequenceConfig) (motion.Sequence, error) {
	seq := motion.NewSequence(sc.Name)
	for i, ac := range sc.Actions {
		action, err := r.buildAction(ac)
		if err != nil {
			return motion.Sequence{}, fmt.Errorf("sequence %q action %d: %w", sc.Name, i, err)
		}
		seq.Then(action)
	}
	return seq.Build(), nil
}

func (r *Rig) buildAction(ac config.ActionConfig) (*motion.ActionBuilder, error) {
	b := motion.NewAction(ac.Name)
	if ac.Speed != "" {
		speed, err := motion.ParseSpeed(ac.Speed)
		if err != nil {
			return nil, err
		}
		b.WithSpeed(speed)
	}

	for _, m := range ac.Moves {
		a, err := r.Actuator(m.Actuator)
		if err != nil {
			return nil, err
		}
		move, err := r.movement(a, m)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.Actuator, err)
		}
		b.AddFunc(a, move)
	}
	return b, nil
}

// movement returns the build-time function for one configured move.
// Trigger-bound moves arm their trigger whenever the action is built.
func (r *Rig) movement(a actuator.Actuator, m config.MoveConfig) (func() motion.Movement, error) {
	var base motion.Movement
	trigger := m.Until

	switch {
	case m.To != nil:
		base = motion.To(*m.To)
	case m.By != nil:
		base = motion.By(*m.By)
	case m.Extend != nil:
		if a.Kind() != actuator.KindLinear {
			return nil, fmt.Errorf("%w: extend needs a linear actuator", actuator.ErrInvalidTarget)
		}
		base = motion.To(*m.Extend)
	case m.ForwardUntil != "":
		trigger = m.ForwardUntil
		base = motion.ForwardUntil(nil)
	case m.BackwardUntil != "":
		trigger = m.BackwardUntil
		base = motion.BackwardUntil(nil)
	default:
		return nil, fmt.Errorf("%w: move has no target", actuator.ErrInvalidTarget)
	}

	if trigger == "" {
		return func() motion.Movement { return base }, nil
	}

	trig, err := r.triggers.Get(trigger)
	if err != nil {
		return nil, err
	}
	return func() motion.Movement {
		trig.Arm()
		return base.WithStopCheck(trig.Fired)
	}, nil
}
