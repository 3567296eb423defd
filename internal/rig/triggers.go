package rig

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// Trigger is a one-shot flag fired by an external event (a limit switch,
// a sensor, an MQTT message). Moves that wait on a trigger arm it when
// their action is built, so an edge seen before the action starts does
// not end it early.
type Trigger struct {
	name  string
	fired atomic.Bool
	count atomic.Uint64
}

// Name returns the trigger name.
func (t *Trigger) Name() string { return t.name }

// Arm resets the trigger.
func (t *Trigger) Arm() { t.fired.Store(false) }

// Fire sets the trigger.
func (t *Trigger) Fire() {
	t.fired.Store(true)
	t.count.Add(1)
}

// Fired reports whether the trigger fired since it was last armed. It is
// the stop check handed to motion movements.
func (t *Trigger) Fired() bool { return t.fired.Load() }

// Count returns how many times the trigger has fired.
func (t *Trigger) Count() uint64 { return t.count.Load() }

// Triggers is the registry of declared triggers. The set is fixed at
// construction; all methods are safe for concurrent use.
type Triggers struct {
	triggers map[string]*Trigger
}

// NewTriggers declares the named triggers.
func NewTriggers(names ...string) *Triggers {
	t := &Triggers{triggers: make(map[string]*Trigger, len(names))}
	for _, name := range names {
		t.triggers[name] = &Trigger{name: name}
	}
	return t
}

// Get returns the named trigger.
func (t *Triggers) Get(name string) (*Trigger, error) {
	trig, ok := t.triggers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTrigger, name)
	}
	return trig, nil
}

// Fire fires the named trigger.
func (t *Triggers) Fire(name string) error {
	trig, err := t.Get(name)
	if err != nil {
		return err
	}
	trig.Fire()
	return nil
}

// Names returns the declared trigger names, sorted.
func (t *Triggers) Names() []string {
	names := make([]string, 0, len(t.triggers))
	for name := range t.triggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
