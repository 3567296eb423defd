package motion

import "github.com/nerrad567/gray-motion-core/internal/actuator"

type movementSpec struct {
	actuator actuator.Actuator
	movement func() Movement
}

// ActionBuilder accumulates movement specifications for one Action.
//
// Movements may be given as values or as functions; functions are called on
// every Build, which is how an action picks up live state such as "rotate to
// the current reading of a sensor".
type ActionBuilder struct {
	name  string
	speed Speed
	specs []movementSpec
}

// NewAction starts a new action builder.
func NewAction(name string) *ActionBuilder {
	return &ActionBuilder{name: name, speed: SpeedDefault}
}

// WithSpeed sets the requested speed class.
func (b *ActionBuilder) WithSpeed(s Speed) *ActionBuilder {
	b.speed = s
	return b
}

// Add appends a fixed movement for a.
func (b *ActionBuilder) Add(a actuator.Actuator, m Movement) *ActionBuilder {
	return b.AddFunc(a, func() Movement { return m })
}

// AddFunc appends a movement evaluated at build time.
func (b *ActionBuilder) AddFunc(a actuator.Actuator, fn func() Movement) *ActionBuilder {
	b.specs = append(b.specs, movementSpec{actuator: a, movement: fn})
	return b
}

// RotateTo rotates a to an absolute angle.
func (b *ActionBuilder) RotateTo(a actuator.Actuator, angle float64) *ActionBuilder {
	return b.Add(a, To(angle))
}

// RotateBy rotates a by a relative angle.
func (b *ActionBuilder) RotateBy(a actuator.Actuator, delta float64) *ActionBuilder {
	return b.Add(a, By(delta))
}

// ExtendTo extends a linear actuator to percentage.
func (b *ActionBuilder) ExtendTo(a actuator.Actuator, percentage float64) *ActionBuilder {
	return b.Add(a, To(percentage))
}

// ForwardUntil runs a forward until check is true.
func (b *ActionBuilder) ForwardUntil(a actuator.Actuator, check func() bool) *ActionBuilder {
	return b.Add(a, ForwardUntil(check))
}

// BackwardUntil runs a backward until check is true.
func (b *ActionBuilder) BackwardUntil(a actuator.Actuator, check func() bool) *ActionBuilder {
	return b.Add(a, BackwardUntil(check))
}

// Len returns the number of movement specifications.
func (b *ActionBuilder) Len() int { return len(b.specs) }

// Build evaluates every specification and returns a fresh Action. The
// builder is not modified.
func (b *ActionBuilder) Build() Action {
	pairs := make([]Pair, 0, len(b.specs))
	for _, sp := range b.specs {
		pairs = append(pairs, Pair{Actuator: sp.actuator, Movement: sp.movement()})
	}
	speed := b.speed
	if !speed.Valid() {
		speed = SpeedDefault
	}
	return Action{name: b.name, pairs: pairs, speed: speed}
}

// Executable builds the action and binds it to this builder.
func (b *ActionBuilder) Executable() ExecutableAction {
	return ExecutableAction{builder: b, action: b.Build()}
}

func (b *ActionBuilder) clone() *ActionBuilder {
	cpy := *b
	cpy.specs = make([]movementSpec, len(b.specs))
	copy(cpy.specs, b.specs)
	return &cpy
}

// ExecutableAction is a materialised Action together with the builder that
// produced it.
type ExecutableAction struct {
	builder *ActionBuilder
	action  Action
}

// Action returns the materialised action.
func (e ExecutableAction) Action() Action { return e.action }

// Speed returns the action's requested speed.
func (e ExecutableAction) Speed() Speed { return e.action.speed }

// Rebuild re-runs the builder from scratch.
func (e ExecutableAction) Rebuild() ExecutableAction {
	if e.builder == nil {
		return e
	}
	return e.builder.Executable()
}

// SequenceBuilder accumulates an ordered list of actions.
type SequenceBuilder struct {
	name    string
	actions []*ActionBuilder
}

// NewSequence starts a new sequence builder.
func NewSequence(name string) *SequenceBuilder {
	return &SequenceBuilder{name: name}
}

// Then appends actions in order.
func (s *SequenceBuilder) Then(actions ...*ActionBuilder) *SequenceBuilder {
	s.actions = append(s.actions, actions...)
	return s
}

// Name returns the sequence name.
func (s *SequenceBuilder) Name() string { return s.name }

// Build snapshots the builder into a Sequence. Later changes to the
// builders do not affect the returned Sequence.
func (s *SequenceBuilder) Build() Sequence {
	actions := make([]*ActionBuilder, len(s.actions))
	for i, a := range s.actions {
		actions[i] = a.clone()
	}
	return Sequence{name: s.name, actions: actions}
}
