package smooth

import (
	"context"
	"sync/atomic"
	"time"
)

// Move asks a rotator to reach Target over Duration.
type Move struct {
	Rotator  *Rotator
	Target   float64
	Duration time.Duration
}

// Outcome is how a task ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeKilled    Outcome = "killed"
	OutcomeFailed    Outcome = "failed"
)

// Result describes a finished task.
type Result struct {
	Rotator string
	Outcome Outcome
	Angle   float64
	Err     error
}

// Task is one in-flight move owned by a Scheduler.
type Task struct {
	move    Move
	from    float64
	to      float64
	started time.Time

	cancelled atomic.Bool
	done      chan struct{}
	result    Result
}

// Done is closed when the task has finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Result returns the outcome. It is only meaningful after Done is closed.
func (t *Task) Result() Result {
	<-t.done
	return t.result
}

// Cancel asks the scheduler to kill the task on its next tick.
func (t *Task) Cancel() { t.cancelled.Store(true) }

// Wait blocks until the task finishes or ctx ends.
func (t *Task) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		return t.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (t *Task) finish(outcome Outcome, err error) {
	t.result = Result{
		Rotator: t.move.Rotator.Name(),
		Outcome: outcome,
		Angle:   t.move.Rotator.Angle(),
		Err:     err,
	}
	close(t.done)
}
