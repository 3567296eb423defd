package telemetry

import (
	"context"
	"time"

	"github.com/nerrad567/gray-motion-core/internal/executor"
	"github.com/nerrad567/gray-motion-core/internal/infrastructure/influxdb"
)

// Hooks decorates executor hooks with actuator position sampling.
type Hooks struct {
	inner  executor.Hooks
	rig    string
	writer PointWriter
	now    func() time.Time
}

var _ executor.Hooks = (*Hooks)(nil)

// WrapHooks returns hooks that delegate to inner and, after every run that
// reaches PostExecution, write one actuator_position point per actuator of
// the run's sequence. A nil inner behaves like executor.NopHooks.
func WrapHooks(inner executor.Hooks, rig string, writer PointWriter) *Hooks {
	if inner == nil {
		inner = executor.NopHooks{}
	}
	return &Hooks{inner: inner, rig: rig, writer: writer, now: time.Now}
}

// CanRun delegates to the wrapped hooks.
func (h *Hooks) CanRun(ctx context.Context, req executor.Request) bool {
	return h.inner.CanRun(ctx, req)
}

// PreExecution delegates to the wrapped hooks.
func (h *Hooks) PreExecution(ctx context.Context, req executor.Request) error {
	return h.inner.PreExecution(ctx, req)
}

// PostExecution samples positions before delegating, so the sample shows
// where the run left each actuator even if the wrapped hooks release them.
func (h *Hooks) PostExecution(ctx context.Context, req executor.Request, outcome executor.Outcome) error {
	at := h.now()
	for _, a := range req.Sequence.Actuators() {
		h.writer.WritePoint(influxdb.NewActuatorPoint(h.rig, a.Name(), string(a.Kind()), a.Position(), at))
	}
	return h.inner.PostExecution(ctx, req, outcome)
}
