package hardware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// DefaultPulseWidth is the step pulse high and low time.
const DefaultPulseWidth = 2 * time.Microsecond

// OutputPin is the subset of gpio.PinIO the stepper driver needs.
type OutputPin interface {
	Name() string
	Out(l gpio.Level) error
}

var hostOnce = sync.OnceValue(func() error {
	_, err := host.Init()
	return err
})

// InitGPIO loads the host's GPIO drivers. It is safe to call repeatedly.
func InitGPIO() error {
	if err := hostOnce(); err != nil {
		return fmt.Errorf("initialising gpio host: %w", err)
	}
	return nil
}

// LookupPin resolves a pin by name, e.g. "GPIO17".
func LookupPin(name string) (OutputPin, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPinNotFound, name)
	}
	return p, nil
}

// GPIOStepperConfig names the pins of a step/dir driver board.
type GPIOStepperConfig struct {
	StepPin   string
	DirPin    string
	EnablePin string // optional

	PulseWidth time.Duration

	// InvertDir swaps the direction level.
	InvertDir bool

	// EnableActiveHigh drives the enable pin high to energise. Most
	// driver boards (A4988, DRV8825, TMC2209) are active low.
	EnableActiveHigh bool
}

// GPIOStepper drives a stepper through step/dir/enable pins.
type GPIOStepper struct {
	step   OutputPin
	dir    OutputPin
	enable OutputPin
	cfg    GPIOStepperConfig

	mu        sync.Mutex
	energised bool
	forward   *bool
}

// OpenGPIOStepper initialises the host and resolves the configured pins.
func OpenGPIOStepper(cfg GPIOStepperConfig) (*GPIOStepper, error) {
	if err := InitGPIO(); err != nil {
		return nil, err
	}
	step, err := LookupPin(cfg.StepPin)
	if err != nil {
		return nil, err
	}
	dir, err := LookupPin(cfg.DirPin)
	if err != nil {
		return nil, err
	}
	var enable OutputPin
	if cfg.EnablePin != "" {
		if enable, err = LookupPin(cfg.EnablePin); err != nil {
			return nil, err
		}
	}
	return NewGPIOStepper(step, dir, enable, cfg), nil
}

// NewGPIOStepper builds a stepper from already resolved pins. enable may be nil.
func NewGPIOStepper(step, dir, enable OutputPin, cfg GPIOStepperConfig) *GPIOStepper {
	if cfg.PulseWidth <= 0 {
		cfg.PulseWidth = DefaultPulseWidth
	}
	return &GPIOStepper{step: step, dir: dir, enable: enable, cfg: cfg}
}

// Step issues one step pulse.
func (g *GPIOStepper) Step(ctx context.Context, forward bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.energised && g.enable != nil {
		if err := g.enable.Out(g.enableLevel(true)); err != nil {
			return fmt.Errorf("%s: enable: %w", g.enable.Name(), err)
		}
	}
	g.energised = true

	if g.forward == nil || *g.forward != forward {
		level := gpio.Level(forward != g.cfg.InvertDir)
		if err := g.dir.Out(level); err != nil {
			return fmt.Errorf("%s: direction: %w", g.dir.Name(), err)
		}
		g.forward = &forward
		time.Sleep(g.cfg.PulseWidth)
	}

	if err := g.step.Out(gpio.High); err != nil {
		return fmt.Errorf("%s: step: %w", g.step.Name(), err)
	}
	time.Sleep(g.cfg.PulseWidth)
	if err := g.step.Out(gpio.Low); err != nil {
		return fmt.Errorf("%s: step: %w", g.step.Name(), err)
	}
	time.Sleep(g.cfg.PulseWidth)
	return nil
}

// Release de-energises the coils. Without an enable pin it is a no-op.
func (g *GPIOStepper) Release(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.energised = false
	if g.enable == nil {
		return nil
	}
	if err := g.enable.Out(g.enableLevel(false)); err != nil {
		return fmt.Errorf("%s: disable: %w", g.enable.Name(), err)
	}
	return nil
}

func (g *GPIOStepper) enableLevel(on bool) gpio.Level {
	return gpio.Level(on == g.cfg.EnableActiveHigh)
}
