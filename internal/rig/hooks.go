package rig

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/gray-motion-core/internal/executor"
)

var (
	_ executor.Hooks          = (*Rig)(nil)
	_ executor.AbandonHandler = (*Rig)(nil)
)

// CanRun refuses everything once the rig is closed and refuses
// interruptable requests while the rig is disabled.
func (r *Rig) CanRun(_ context.Context, req executor.Request) bool {
	if r.closed.Load() {
		return false
	}
	return !req.Interruptable || r.enabled.Load()
}

// PreExecution runs before the first action of a sequence.
func (r *Rig) PreExecution(_ context.Context, req executor.Request) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if req.Interruptable && !r.enabled.Load() {
		return ErrDisabled
	}
	r.logger.Info("sequence starting",
		"sequence", req.Sequence.Name(),
		"run_id", req.RunID,
		"source", req.Source,
		"interruptable", req.Interruptable,
	)
	return nil
}

// PostExecution relaxes every actuator the sequence touched.
func (r *Rig) PostExecution(ctx context.Context, req executor.Request, outcome executor.Outcome) error {
	var errs []error
	for _, a := range req.Sequence.Actuators() {
		if err := a.Release(ctx); err != nil {
			errs = append(errs, fmt.Errorf("releasing %s: %w", a.Name(), err))
		}
	}
	r.logger.Debug("sequence finished",
		"sequence", req.Sequence.Name(),
		"run_id", req.RunID,
		"outcome", outcome,
	)
	return errors.Join(errs...)
}

// Abandoned records a run preempted by an emergency request. Its
// actuators are left to the emergency sequence.
func (r *Rig) Abandoned(_ context.Context, req executor.Request) {
	r.logger.Warn("sequence abandoned",
		"sequence", req.Sequence.Name(),
		"run_id", req.RunID,
		"source", req.Source,
	)
}
