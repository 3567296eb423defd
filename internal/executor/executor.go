package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-motion-core/internal/actuator"
	"github.com/nerrad567/gray-motion-core/internal/bus"
	"github.com/nerrad567/gray-motion-core/internal/motion"
)

// Executor is the single writer for a set of actuators.
//
// Thread Safety: Submit, Status and Shutdown are safe for concurrent use.
// Run must be called exactly once.
type Executor struct {
	cfg       Config
	hooks     Hooks
	abandon   AbandonHandler
	events    EventPublisher
	actuators []actuator.Actuator
	logger    Logger

	priority chan Request
	normal   chan Request
	wake     chan struct{}

	// stop is the only state shared with the stepping loop.
	stop atomic.Bool

	mu          sync.Mutex
	state       State
	since       time.Time
	current     *Request
	lastOutcome Outcome
	started     bool
	closed      bool
	cancel      context.CancelFunc

	done chan struct{}
}

// Option configures an Executor.
type Option func(*Executor)

// WithHooks installs the lifecycle hooks.
func WithHooks(h Hooks) Option {
	return func(e *Executor) {
		if h != nil {
			e.hooks = h
		}
	}
}

// WithAbandonHandler installs a handler for preempted runs.
func WithAbandonHandler(h AbandonHandler) Option {
	return func(e *Executor) { e.abandon = h }
}

// WithEvents sets where lifecycle events are published.
func WithEvents(p EventPublisher) Option {
	return func(e *Executor) {
		if p != nil {
			e.events = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an executor owning actuators. The actuators are released
// when the executor shuts down.
func New(cfg Config, actuators []actuator.Actuator, opts ...Option) *Executor {
	cfg = cfg.withDefaults()
	e := &Executor{
		cfg:       cfg,
		hooks:     NopHooks{},
		events:    nopPublisher{},
		actuators: actuators,
		logger:    noopLogger{},
		priority:  make(chan Request, cfg.QueueSize),
		normal:    make(chan Request, cfg.QueueSize),
		wake:      make(chan struct{}, 1),
		state:     StateIdle,
		since:     time.Now().UTC(),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit queues req and returns its run ID.
//
// A non-interruptable request takes the priority lane and raises the stop
// flag so an interruptable run in progress is abandoned at its next tick.
func (e *Executor) Submit(req Request) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return "", ErrShutdown
	}
	if req.RunID == "" {
		req.RunID = GenerateRunID()
	}

	lane := e.normal
	if !req.Interruptable {
		lane = e.priority
	}
	select {
	case lane <- req:
	default:
		return "", fmt.Errorf("%w: %s", ErrQueueFull, req.Sequence.Name())
	}

	if !req.Interruptable {
		// Raised after the request is visible in the lane, so a run that
		// clears the flag at start still sees the queued emergency.
		e.stop.Store(true)
		select {
		case e.wake <- struct{}{}:
		default:
		}
	}

	e.logger.Debug("sequence queued",
		"sequence", req.Sequence.Name(),
		"run_id", req.RunID,
		"interruptable", req.Interruptable,
		"source", req.Source,
	)
	return req.RunID, nil
}

// Listen subscribes Submit to a request topic.
func (e *Executor) Listen(topic *bus.Topic[Request]) (*bus.Subscription[Request], error) {
	return topic.Subscribe(func(req Request) {
		if _, err := e.Submit(req); err != nil {
			e.logger.Warn("bus request rejected",
				"sequence", req.Sequence.Name(),
				"error", err,
			)
		}
	})
}

// Status returns a snapshot of the executor.
func (e *Executor) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{
		State:       e.state,
		Since:       e.since,
		QueueDepth:  len(e.priority) + len(e.normal),
		LastOutcome: e.lastOutcome,
	}
	if e.current != nil {
		st.Sequence = e.current.Sequence.Name()
		st.RunID = e.current.RunID
		st.Interruptable = e.current.Interruptable
	}
	return st
}

// Done is closed when Run has returned.
func (e *Executor) Done() <-chan struct{} { return e.done }

// Run processes requests until ctx is cancelled or Shutdown is called. On
// exit the executor is in SHUTDOWN, queued requests are cancelled and every
// owned actuator is released.
func (e *Executor) Run(ctx context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}
	if e.closed {
		e.mu.Unlock()
		return ErrShutdown
	}
	e.started = true
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.mu.Unlock()

	defer close(e.done)
	defer cancel()

	e.logger.Info("executor started", "actuators", len(e.actuators))

	for {
		// Nothing queued starts once shutdown has begun; finish cancels it.
		if ctx.Err() != nil {
			e.finish()
			return nil
		}

		// Emergency lane first.
		select {
		case req := <-e.priority:
			e.process(ctx, req)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			e.finish()
			return nil
		case req := <-e.priority:
			e.process(ctx, req)
		case req := <-e.normal:
			e.process(ctx, req)
		}
	}
}

// Shutdown stops the worker and waits for it to release the actuators.
func (e *Executor) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	cancel := e.cancel
	started := e.started
	e.mu.Unlock()

	if !started {
		e.finish()
		return nil
	}
	cancel()

	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for executor: %w", ctx.Err())
	}
}

func (e *Executor) finish() {
	e.mu.Lock()
	if e.state == StateShutdown {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.setState(StateShutdown)
	e.current = nil
	e.mu.Unlock()

	e.drain(e.priority)
	e.drain(e.normal)

	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	for _, a := range e.actuators {
		if err := a.Release(ctx); err != nil {
			e.logger.Error("releasing actuator on shutdown",
				"actuator", a.Name(),
				"error", err,
			)
		}
	}
	e.logger.Info("executor stopped")
}

// drain cancels every request still queued in lane.
func (e *Executor) drain(lane chan Request) {
	for {
		select {
		case req := <-lane:
			e.publish(e.event(req, OutcomeCancelled, time.Now().UTC(), 0, 0, ErrCancelled))
		default:
			return
		}
	}
}

// setState must be called with e.mu held.
func (e *Executor) setState(s State) {
	e.logger.Debug("executor state", "from", e.state, "to", s)
	e.state = s
	e.since = time.Now().UTC()
}

func (e *Executor) process(ctx context.Context, req Request) {
	if ctx.Err() != nil {
		e.publish(e.event(req, OutcomeCancelled, time.Now().UTC(), 0, 0, ErrCancelled))
		return
	}
	if !req.Interruptable {
		// An emergency supersedes everything waiting behind it.
		e.drain(e.normal)
	} else {
		select {
		case <-e.wake:
		default:
		}
		e.stop.Store(false)
		if len(e.priority) > 0 {
			e.publish(e.event(req, OutcomeCancelled, time.Now().UTC(), 0, 0, ErrCancelled))
			return
		}
	}

	if !e.hooks.CanRun(ctx, req) {
		e.logger.Info("sequence refused", "sequence", req.Sequence.Name(), "run_id", req.RunID)
		e.publish(e.event(req, OutcomeRefused, time.Now().UTC(), 0, 0, ErrRefused))
		return
	}

	e.mu.Lock()
	e.current = &req
	e.setState(StateRunning)
	e.mu.Unlock()

	started := time.Now().UTC()
	e.logger.Info("sequence started",
		"sequence", req.Sequence.Name(),
		"run_id", req.RunID,
		"actions", req.Sequence.Len(),
		"interruptable", req.Interruptable,
	)

	outcome, ticks, actions, runErr := e.execute(ctx, req)

	switch outcome {
	case OutcomeInterrupted:
		if e.abandon != nil {
			e.abandon.Abandoned(ctx, req)
		}
	default:
		// Post-execution must still run after a failure so motors are relaxed.
		postCtx := ctx
		if ctx.Err() != nil {
			var cancel context.CancelFunc
			postCtx, cancel = context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()
		}
		if err := e.hooks.PostExecution(postCtx, req, outcome); err != nil {
			e.logger.Error("post-execution failed",
				"sequence", req.Sequence.Name(),
				"run_id", req.RunID,
				"error", err,
			)
		}
	}

	ev := e.event(req, outcome, started, ticks, actions, runErr)
	e.logger.Info("sequence finished",
		"sequence", ev.SequenceID,
		"run_id", ev.RunID,
		"outcome", ev.Outcome,
		"ticks", ev.Ticks,
		"duration_ms", ev.DurationMS,
	)

	e.mu.Lock()
	e.setState(outcome.state())
	e.lastOutcome = outcome
	e.current = nil
	e.setState(StateIdle)
	e.mu.Unlock()

	e.publish(ev)
}

// execute drives every action of req. It returns the outcome, the total
// tick count, the number of fully completed actions and the error that
// ended the run early, if any.
func (e *Executor) execute(ctx context.Context, req Request) (Outcome, int, int, error) {
	if err := e.hooks.PreExecution(ctx, req); err != nil {
		e.logger.Error("pre-execution failed",
			"sequence", req.Sequence.Name(),
			"run_id", req.RunID,
			"error", err,
		)
		return OutcomeFailed, 0, 0, fmt.Errorf("pre-execution: %w", err)
	}

	total := 0
	seq := req.Sequence
	for i := range seq.Len() {
		ea, err := seq.Action(i)
		if err != nil {
			return OutcomeFailed, total, i, err
		}
		action := ea.Action()
		stepper := motion.NewStepper(action)
		interval := e.cfg.Intervals[action.Speed()]

		for {
			ticks := total + stepper.Ticks()
			if err := ctx.Err(); err != nil {
				return OutcomeInterrupted, ticks, i, err
			}
			if req.Interruptable && e.stop.Load() {
				e.logger.Warn("sequence preempted",
					"sequence", seq.Name(),
					"run_id", req.RunID,
					"action_index", i,
				)
				return OutcomeInterrupted, ticks, i, ErrPreempted
			}

			more, err := stepper.Step(ctx)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
					return OutcomeInterrupted, total + stepper.Ticks(), i, ctxErr
				}
				var stepErr *motion.StepError
				name := ""
				if errors.As(err, &stepErr) {
					name = stepErr.Actuator
				}
				e.logger.Error("hardware error, aborting sequence",
					"sequence", seq.Name(),
					"run_id", req.RunID,
					"action_index", i,
					"action", action.Name(),
					"actuator", name,
					"error", err,
				)
				return OutcomeFailed, total + stepper.Ticks(), i, fmt.Errorf("action %d: %w", i, err)
			}
			if !more {
				break
			}
			// An early wake-up falls through to the flag checks above.
			e.pause(ctx, interval)
		}
		total += stepper.Ticks()
	}
	return OutcomeCompleted, total, seq.Len(), nil
}

// pause sleeps for d unless ctx ends or an emergency arrives first.
func (e *Executor) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	case <-e.wake:
	}
}

func (e *Executor) event(req Request, outcome Outcome, started time.Time, ticks, actions int, err error) SequenceEvent {
	ev := SequenceEvent{
		SequenceID:    req.Sequence.Name(),
		RunID:         req.RunID,
		Outcome:       outcome,
		Source:        req.Source,
		Interruptable: req.Interruptable,
		StartedAt:     started,
		DurationMS:    time.Since(started).Milliseconds(),
		Ticks:         ticks,
		Actions:       actions,
	}
	if err != nil {
		ev.Error = err.Error()
	}
	return ev
}

func (e *Executor) publish(ev SequenceEvent) {
	if err := e.events.Publish(ev); err != nil {
		e.logger.Warn("publishing sequence event", "run_id", ev.RunID, "error", err)
	}
}
