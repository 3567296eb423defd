package telemetry

import (
	"sync"

	"github.com/nerrad567/gray-motion-core/internal/bus"
	"github.com/nerrad567/gray-motion-core/internal/executor"
)

// Recorder writes a sequence_run point for every SequenceEvent.
type Recorder struct {
	rig    string
	writer PointWriter

	mu  sync.Mutex
	sub *bus.Subscription[executor.SequenceEvent]
}

// NewRecorder creates a recorder tagging points with rig.
func NewRecorder(rig string, writer PointWriter) *Recorder {
	return &Recorder{rig: rig, writer: writer}
}

// Start subscribes to the executor event topic in reg. Calling Start on a
// running recorder is a no-op.
func (r *Recorder) Start(reg *bus.Registry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sub != nil {
		return nil
	}

	sub, err := bus.Subscribe(reg, executor.EventsKey, r.Record)
	if err != nil {
		return err
	}
	r.sub = sub
	return nil
}

// Stop unsubscribes and waits for buffered events to be written.
func (r *Recorder) Stop() {
	r.mu.Lock()
	sub := r.sub
	r.sub = nil
	r.mu.Unlock()

	if sub == nil {
		return
	}
	sub.Unsubscribe()
	<-sub.Done()
}

// Record writes the point for one event.
func (r *Recorder) Record(ev executor.SequenceEvent) {
	r.writer.WritePoint(NewSequenceRunPoint(r.rig, ev))
}
