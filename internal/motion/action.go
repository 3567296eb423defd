package motion

import "github.com/nerrad567/gray-motion-core/internal/actuator"

// Pair binds one actuator to its Movement within an Action.
type Pair struct {
	Actuator actuator.Actuator
	Movement Movement
}

// Action is a set of pairs stepped concurrently at one requested speed.
// An Action completes only when every pair has completed.
type Action struct {
	name  string
	pairs []Pair
	speed Speed
}

// Name returns the action's label (may be empty).
func (a Action) Name() string { return a.name }

// Speed returns the requested speed class.
func (a Action) Speed() Speed { return a.speed }

// Len returns the number of pairs.
func (a Action) Len() int { return len(a.pairs) }

// Pairs returns a copy of the pairs in insertion order.
func (a Action) Pairs() []Pair {
	out := make([]Pair, len(a.pairs))
	copy(out, a.pairs)
	return out
}

// Sequence is an ordered list of actions. Each action is materialised from
// its builder only when requested, so live values are read as late as
// possible.
type Sequence struct {
	name    string
	actions []*ActionBuilder
}

// Name returns the sequence name, used as the sequence ID in lifecycle events.
func (s Sequence) Name() string { return s.name }

// Len returns the number of actions.
func (s Sequence) Len() int { return len(s.actions) }

// Action builds the i-th action afresh.
func (s Sequence) Action(i int) (ExecutableAction, error) {
	if i < 0 || i >= len(s.actions) {
		return ExecutableAction{}, ErrActionIndex
	}
	return s.actions[i].Executable(), nil
}

// Actuators returns every distinct actuator the sequence touches, in first-use order.
func (s Sequence) Actuators() []actuator.Actuator {
	seen := make(map[string]bool)
	var out []actuator.Actuator
	for _, b := range s.actions {
		for _, sp := range b.specs {
			if name := sp.actuator.Name(); !seen[name] {
				seen[name] = true
				out = append(out, sp.actuator)
			}
		}
	}
	return out
}
