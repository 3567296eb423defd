package executor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-motion-core/internal/actuator"
	"github.com/nerrad567/gray-motion-core/internal/motion"
)

var errServoBus = errors.New("servo bus timeout")

// fakeRotator moves one degree per call.
type fakeRotator struct {
	name string

	mu       sync.Mutex
	pos      float64
	writes   int
	released int
	failAt   int
	ctxAware bool
	onWrite  func(n int)
	log      *[]string
	logMu    *sync.Mutex
}

func (f *fakeRotator) Name() string { return f.name }

func (f *fakeRotator) Current() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos
}

func (f *fakeRotator) MoveTowards(ctx context.Context, target float64) (bool, error) {
	f.mu.Lock()
	if f.ctxAware && ctx.Err() != nil {
		f.mu.Unlock()
		return false, ctx.Err()
	}
	if f.pos == target {
		f.mu.Unlock()
		return true, nil
	}
	if f.failAt > 0 && f.writes+1 == f.failAt {
		f.mu.Unlock()
		return false, errServoBus
	}
	if target > f.pos {
		f.pos++
	} else {
		f.pos--
	}
	f.writes++
	n, done, hook := f.writes, f.pos == target, f.onWrite
	f.mu.Unlock()

	if f.log != nil {
		f.logMu.Lock()
		*f.log = append(*f.log, f.name)
		f.logMu.Unlock()
	}
	if hook != nil {
		hook(n)
	}
	return done, nil
}

func (f *fakeRotator) Release(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released++
	return nil
}

func (f *fakeRotator) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *fakeRotator) Released() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

func newFake(name string) (*fakeRotator, actuator.Actuator) {
	f := &fakeRotator{name: name}
	return f, actuator.OfRotator(f)
}

// eventLog records published events.
type eventLog struct {
	ch chan SequenceEvent
}

func newEventLog() *eventLog { return &eventLog{ch: make(chan SequenceEvent, 32)} }

func (l *eventLog) Publish(ev SequenceEvent) error {
	l.ch <- ev
	return nil
}

func (l *eventLog) next(t *testing.T) SequenceEvent {
	t.Helper()
	select {
	case ev := <-l.ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sequence event")
		return SequenceEvent{}
	}
}

// recordingHooks records every hook call.
type recordingHooks struct {
	mu       sync.Mutex
	refuse   bool
	preErr   error
	pre      []string
	post     []string
	outcomes []Outcome
}

func (h *recordingHooks) CanRun(context.Context, Request) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.refuse
}

func (h *recordingHooks) PreExecution(_ context.Context, req Request) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pre = append(h.pre, req.Sequence.Name())
	return h.preErr
}

func (h *recordingHooks) PostExecution(_ context.Context, req Request, outcome Outcome) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.post = append(h.post, req.Sequence.Name())
	h.outcomes = append(h.outcomes, outcome)
	return nil
}

func (h *recordingHooks) calls() (pre, post []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.pre...), append([]string(nil), h.post...)
}

type recordingAbandon struct {
	mu   sync.Mutex
	runs []string
}

func (r *recordingAbandon) Abandoned(_ context.Context, req Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, req.Sequence.Name())
}

func fastConfig() Config {
	intervals := make(map[motion.Speed]time.Duration)
	for _, s := range motion.AllSpeeds() {
		intervals[s] = 0
	}
	return Config{QueueSize: 8, Intervals: intervals}
}

func rotateSeq(name string, a actuator.Actuator, target float64) motion.Sequence {
	return motion.NewSequence(name).
		Then(motion.NewAction(name + "-move").RotateTo(a, target)).
		Build()
}

func start(t *testing.T, e *Executor) {
	t.Helper()
	go func() {
		if err := e.Run(context.Background()); err != nil {
			t.Errorf("Run: %v", err)
		}
	}()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := e.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown: %v", err)
		}
	})
}
