package smooth

import "context"

// Scene is a set of tasks started together.
type Scene struct {
	name  string
	tasks []*Task
	done  chan struct{}
}

// Play schedules every move on s. If any move cannot be scheduled, the moves
// already started are cancelled and the error is returned.
func Play(s *Scheduler, name string, moves ...Move) (*Scene, error) {
	sc := &Scene{name: name, done: make(chan struct{})}
	for _, m := range moves {
		t, err := s.Schedule(m)
		if err != nil {
			sc.Cancel()
			return nil, err
		}
		sc.tasks = append(sc.tasks, t)
	}

	go func() {
		for _, t := range sc.tasks {
			<-t.Done()
		}
		close(sc.done)
	}()
	return sc, nil
}

// Name returns the scene name.
func (sc *Scene) Name() string { return sc.name }

// Done is closed once every participant has finished.
func (sc *Scene) Done() <-chan struct{} { return sc.done }

// Cancel kills every participant on the next tick.
func (sc *Scene) Cancel() {
	for _, t := range sc.tasks {
		t.Cancel()
	}
}

// Wait blocks until every participant has finished and returns their
// results in move order.
func (sc *Scene) Wait(ctx context.Context) ([]Result, error) {
	select {
	case <-sc.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	results := make([]Result, len(sc.tasks))
	for i, t := range sc.tasks {
		results[i] = t.Result()
	}
	return results, nil
}

// Completed reports whether every participant reached its target.
func Completed(results []Result) bool {
	for _, r := range results {
		if r.Outcome != OutcomeCompleted {
			return false
		}
	}
	return true
}
