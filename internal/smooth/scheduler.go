package smooth

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

// DefaultTick is the scheduler period used when none is configured.
const DefaultTick = 20 * time.Millisecond

// Logger is the logging interface used by the scheduler.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// SchedulerConfig tunes a Scheduler.
type SchedulerConfig struct {
	// Tick is the period between position updates.
	Tick time.Duration

	// Landing is the deceleration fraction of the SoftLanding profile.
	Landing float64

	// Kill is polled once per tick; when it returns true every task is
	// killed. May be nil.
	Kill func() bool
}

// Scheduler advances every in-flight Task from one tick source.
//
// Thread Safety: Schedule and Active are safe for concurrent use. Run must
// be called once.
type Scheduler struct {
	tick    time.Duration
	profile SoftLanding
	kill    func() bool
	logger  Logger
	now     func() time.Time

	mu      sync.Mutex
	tasks   []*Task
	busy    map[*Rotator]bool
	stopped bool
}

// NewScheduler creates a scheduler. Call Run to start ticking.
func NewScheduler(cfg SchedulerConfig, logger Logger) *Scheduler {
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	if logger == nil {
		logger = noopLogger{}
	}
	kill := cfg.Kill
	if kill == nil {
		kill = func() bool { return false }
	}
	return &Scheduler{
		tick:    cfg.Tick,
		profile: SoftLanding{Landing: cfg.Landing},
		kill:    kill,
		logger:  logger,
		now:     time.Now,
		busy:    make(map[*Rotator]bool),
	}
}

// Schedule starts m. A rotator may only have one task in flight.
func (s *Scheduler) Schedule(m Move) (*Task, error) {
	if m.Rotator == nil || math.IsNaN(m.Target) {
		return nil, ErrInvalidMove
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil, ErrStopped
	}
	if s.busy[m.Rotator] {
		return nil, fmt.Errorf("%w: %s", ErrBusy, m.Rotator.Name())
	}

	t := &Task{
		move:    m,
		from:    m.Rotator.Angle(),
		to:      m.Rotator.Clamp(m.Target),
		started: s.now(),
		done:    make(chan struct{}),
	}
	s.busy[m.Rotator] = true
	s.tasks = append(s.tasks, t)

	s.logger.Debug("smooth move scheduled",
		"rotator", m.Rotator.Name(),
		"from", t.from,
		"to", t.to,
		"duration", m.Duration,
	)
	return t, nil
}

// Active returns the number of tasks in flight.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Run ticks until ctx ends. Tasks still in flight are then killed.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.stop()
			return nil
		case <-ticker.C:
			s.advance(ctx, s.now())
		}
	}
}

func (s *Scheduler) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for _, t := range s.tasks {
		s.killTask(ctx, t)
	}
	s.tasks = nil
}

// advance moves every task to its position at now.
func (s *Scheduler) advance(ctx context.Context, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	killAll := s.kill()
	remaining := s.tasks[:0]
	for _, t := range s.tasks {
		if killAll || t.cancelled.Load() {
			s.killTask(ctx, t)
			continue
		}

		frac := 1.0
		if t.move.Duration > 0 {
			frac = float64(now.Sub(t.started)) / float64(t.move.Duration)
		}
		angle := t.from + (t.to-t.from)*s.profile.Progress(frac)
		if frac >= 1 {
			angle = t.to
		}

		if err := t.move.Rotator.set(ctx, angle); err != nil {
			s.logger.Error("smooth move failed",
				"rotator", t.move.Rotator.Name(),
				"error", err,
			)
			delete(s.busy, t.move.Rotator)
			t.finish(OutcomeFailed, err)
			continue
		}

		if frac >= 1 {
			delete(s.busy, t.move.Rotator)
			t.finish(OutcomeCompleted, nil)
			continue
		}
		remaining = append(remaining, t)
	}
	// Drop references held past the new length.
	for i := len(remaining); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = remaining
}

// killTask must be called with s.mu held.
func (s *Scheduler) killTask(ctx context.Context, t *Task) {
	r := t.move.Rotator
	if err := r.Release(ctx); err != nil {
		s.logger.Error("releasing killed rotator", "rotator", r.Name(), "error", err)
	}
	delete(s.busy, r)
	t.finish(OutcomeKilled, ErrKilled)
	s.logger.Info("smooth move killed", "rotator", r.Name(), "angle", r.Angle())
}
