package rig

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-motion-core/internal/actuator"
	"github.com/nerrad567/gray-motion-core/internal/executor"
	"github.com/nerrad567/gray-motion-core/internal/hardware"
	"github.com/nerrad567/gray-motion-core/internal/infrastructure/config"
	"github.com/nerrad567/gray-motion-core/internal/motion"
	"github.com/nerrad567/gray-motion-core/internal/smooth"
)

// Logger defines the logging interface used by the rig.
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

// Rig owns everything built from the rig sections of the configuration:
// actuators with their drivers, smooth rotators, triggers and the
// sequence and scene library. It also implements executor.Hooks and
// executor.AbandonHandler.
//
// The set of actuators is fixed after New; lookups are safe for concurrent
// use. Moving actuators is the executor's job alone.
type Rig struct {
	cfg      *config.Config
	logger   Logger
	drivers  *drivers
	triggers *Triggers

	actuators map[string]actuator.Actuator
	order     []string

	rotators     map[string]*smooth.Rotator
	rotatorOrder []string

	sequences  map[string]config.SequenceConfig
	seqOrder   []string
	scenes     map[string]config.SceneConfig
	sceneOrder []string

	enabled atomic.Bool
	killed  atomic.Bool
	closed  atomic.Bool
}

// New opens every configured driver and builds the rig. On error anything
// already opened is closed again. A nil logger discards output.
func New(ctx context.Context, cfg *config.Config, logger Logger) (*Rig, error) {
	if logger == nil {
		logger = noopLogger{}
	}

	r := &Rig{
		cfg:       cfg,
		logger:    logger,
		drivers:   newDrivers(cfg.Hardware),
		triggers:  NewTriggers(cfg.Triggers...),
		actuators: make(map[string]actuator.Actuator, len(cfg.Actuators)),
		rotators:  make(map[string]*smooth.Rotator, len(cfg.SmoothRotators)),
		sequences: make(map[string]config.SequenceConfig, len(cfg.Sequences)),
		scenes:    make(map[string]config.SceneConfig, len(cfg.Scenes)),
	}
	r.enabled.Store(true)

	if err := r.build(ctx); err != nil {
		if closeErr := r.drivers.close(); closeErr != nil {
			logger.Warn("closing drivers after failed build", "error", closeErr)
		}
		return nil, err
	}

	logger.Info("rig ready",
		"rig", cfg.Rig.ID,
		"actuators", len(r.order),
		"smooth_rotators", len(r.rotatorOrder),
		"sequences", len(r.seqOrder),
		"scenes", len(r.sceneOrder),
	)
	return r, nil
}

func (r *Rig) build(ctx context.Context) error {
	for _, ac := range r.cfg.Actuators {
		a, err := r.buildActuator(ctx, ac)
		if err != nil {
			return fmt.Errorf("actuator %q: %w", ac.Name, err)
		}
		r.actuators[ac.Name] = a
		r.order = append(r.order, ac.Name)
	}

	for _, rc := range r.cfg.SmoothRotators {
		drv, err := r.drivers.servo(ctx, rc.Name, rc.Driver, rc.Feetech, rc.Sim)
		if err != nil {
			return fmt.Errorf("smooth rotator %q: %w", rc.Name, err)
		}
		rot, err := smooth.NewRotator(ctx, rc.Name, drv, smooth.Config{Home: rc.Home, Maximum: rc.Maximum})
		if err != nil {
			return fmt.Errorf("smooth rotator %q: %w", rc.Name, err)
		}
		r.rotators[rc.Name] = rot
		r.rotatorOrder = append(r.rotatorOrder, rc.Name)
	}

	for _, sc := range r.cfg.Sequences {
		r.sequences[sc.Name] = sc
		r.seqOrder = append(r.seqOrder, sc.Name)
		if _, err := r.buildSequence(sc); err != nil {
			return err
		}
	}

	for _, sc := range r.cfg.Scenes {
		r.scenes[sc.Name] = sc
		r.sceneOrder = append(r.sceneOrder, sc.Name)
		if _, err := r.Scene(sc.Name); err != nil {
			return err
		}
	}
	return nil
}

func (r *Rig) buildActuator(ctx context.Context, ac config.ActuatorConfig) (actuator.Actuator, error) {
	switch ac.Kind {
	case config.KindStepper:
		drv, err := r.drivers.stepper(ac.Name, ac.Driver, ac.GPIO)
		if err != nil {
			return nil, err
		}
		s, err := actuator.NewStepperRotator(ac.Name, drv, actuator.StepperConfig{
			StepsPerRotation:  ac.Stepper.StepsPerRotation,
			GearRatio:         ac.Stepper.GearRatio,
			StepsPerIncrement: ac.Stepper.StepsPerIncrement,
			StartAngle:        ac.Stepper.StartAngle,
		})
		if err != nil {
			return nil, err
		}
		return actuator.OfRotator(s), nil

	case config.KindServo, config.KindLinear:
		drv, err := r.drivers.servo(ctx, ac.Name, ac.Driver, ac.Feetech, ac.Sim)
		if err != nil {
			return nil, err
		}
		precision := ac.Servo.Precision
		if precision == 0 {
			precision = r.cfg.Rig.Precision
		}
		s, err := actuator.NewServoRotator(ctx, ac.Name, drv, actuator.ServoConfig{
			Home:      ac.Servo.Home,
			Maximum:   ac.Servo.Maximum,
			Delta:     ac.Servo.Delta,
			Precision: precision,
		})
		if err != nil {
			return nil, err
		}
		if ac.Kind == config.KindLinear {
			return actuator.OfLinear(actuator.NewServoLinear(s)), nil
		}
		return actuator.OfRotator(s), nil

	default:
		return nil, fmt.Errorf("%w: unknown kind %q", actuator.ErrInvalidConfig, ac.Kind)
	}
}

// ID returns the configured rig ID.
func (r *Rig) ID() string { return r.cfg.Rig.ID }

// Name returns the configured rig name.
func (r *Rig) Name() string { return r.cfg.Rig.Name }

// Actuator returns the named actuator.
func (r *Rig) Actuator(name string) (actuator.Actuator, error) {
	a, ok := r.actuators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownActuator, name)
	}
	return a, nil
}

// Actuators returns every actuator in configuration order.
func (r *Rig) Actuators() []actuator.Actuator {
	out := make([]actuator.Actuator, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.actuators[name])
	}
	return out
}

// Rotator returns the named smooth rotator.
func (r *Rig) Rotator(name string) (*smooth.Rotator, error) {
	rot, ok := r.rotators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRotator, name)
	}
	return rot, nil
}

// Rotators returns every smooth rotator in configuration order.
func (r *Rig) Rotators() []*smooth.Rotator {
	out := make([]*smooth.Rotator, 0, len(r.rotatorOrder))
	for _, name := range r.rotatorOrder {
		out = append(out, r.rotators[name])
	}
	return out
}

// Triggers returns the trigger registry.
func (r *Rig) Triggers() *Triggers { return r.triggers }

// SimServo returns the simulated driver behind a sim-driven servo,
// linear actuator or smooth rotator.
func (r *Rig) SimServo(name string) (*hardware.SimServo, bool) {
	s, ok := r.drivers.simServos[name]
	return s, ok
}

// SimStepper returns the simulated driver behind a sim-driven stepper.
func (r *Rig) SimStepper(name string) (*hardware.SimStepper, bool) {
	s, ok := r.drivers.simSteppers[name]
	return s, ok
}

// ExecutorConfig translates the executor section into executor.Config.
// Speed names were checked by config validation; unknown ones are skipped.
func (r *Rig) ExecutorConfig() executor.Config {
	intervals := make(map[motion.Speed]time.Duration, len(r.cfg.Executor.TickIntervalsMS))
	for name := range r.cfg.Executor.TickIntervalsMS {
		speed, err := motion.ParseSpeed(name)
		if err != nil {
			continue
		}
		d, _ := r.cfg.TickInterval(name)
		intervals[speed] = d
	}
	return executor.Config{
		QueueSize: r.cfg.Executor.QueueSize,
		Intervals: intervals,
	}
}

// SchedulerConfig translates the smooth section into a scheduler config
// whose kill switch is the rig's kill flag.
func (r *Rig) SchedulerConfig() smooth.SchedulerConfig {
	return smooth.SchedulerConfig{
		Tick:    time.Duration(r.cfg.Smooth.TickMS) * time.Millisecond,
		Landing: r.cfg.Smooth.Landing,
		Kill:    r.Killed,
	}
}

// Kill sets the kill flag polled by the smooth scheduler every tick.
func (r *Rig) Kill() { r.killed.Store(true) }

// Killed reports whether the kill flag is set.
func (r *Rig) Killed() bool { return r.killed.Load() }

// SetEnabled switches the rig between normal operation and a mode in
// which only non-interruptable requests (the emergency stop) may run.
func (r *Rig) SetEnabled(on bool) {
	r.enabled.Store(on)
	r.logger.Info("rig mode changed", "enabled", on)
}

// Enabled reports the current mode.
func (r *Rig) Enabled() bool { return r.enabled.Load() }

// Release releases every actuator and smooth rotator. Failures are
// logged and joined; every device is attempted.
func (r *Rig) Release(ctx context.Context) error {
	var errs []error
	for _, a := range r.Actuators() {
		if err := a.Release(ctx); err != nil {
			r.logger.Error("releasing actuator", "actuator", a.Name(), "error", err)
			errs = append(errs, err)
		}
	}
	for _, rot := range r.Rotators() {
		if err := rot.Release(ctx); err != nil {
			r.logger.Error("releasing smooth rotator", "rotator", rot.Name(), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close releases every device and closes the hardware buses. The rig
// refuses further requests afterwards.
func (r *Rig) Close(ctx context.Context) error {
	if r.closed.Swap(true) {
		return nil
	}
	releaseErr := r.Release(ctx)
	return errors.Join(releaseErr, r.drivers.close())
}
