package history

import (
	"context"
	"sync"
	"time"

	"github.com/nerrad567/gray-motion-core/internal/bus"
	"github.com/nerrad567/gray-motion-core/internal/executor"
)

const recordTimeout = 5 * time.Second

// Logger defines the logging interface used by the recorder.
type Logger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Error(string, ...any) {}

// Recorder writes every SequenceEvent published on the executor's event
// topic to a Repository. Write failures are logged and never block the
// executor.
type Recorder struct {
	repo   Repository
	logger Logger

	mu  sync.Mutex
	sub *bus.Subscription[executor.SequenceEvent]
}

// NewRecorder creates a recorder. A nil logger discards output.
func NewRecorder(repo Repository, logger Logger) *Recorder {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Recorder{repo: repo, logger: logger}
}

// Start subscribes to the executor event topic in reg. Calling Start on a
// running recorder is a no-op.
func (r *Recorder) Start(reg *bus.Registry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sub != nil {
		return nil
	}

	sub, err := bus.Subscribe(reg, executor.EventsKey, r.handle)
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

func (r *Recorder) handle(ev executor.SequenceEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := r.repo.Record(ctx, RunFromEvent(ev)); err != nil {
		r.logger.Error("recording sequence run",
			"sequence", ev.SequenceID,
			"run_id", ev.RunID,
			"error", err,
		)
		return
	}
	r.logger.Debug("sequence run recorded",
		"sequence", ev.SequenceID,
		"run_id", ev.RunID,
		"outcome", ev.Outcome,
	)
}
