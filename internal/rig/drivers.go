package rig

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gray-motion-core/internal/actuator"
	"github.com/nerrad567/gray-motion-core/internal/hardware"
	"github.com/nerrad567/gray-motion-core/internal/infrastructure/config"
)

// drivers opens hardware on demand and remembers what it opened so the
// rig can close buses and tests can reach simulated drivers.
type drivers struct {
	busCfg map[string]config.FeetechBusConfig
	buses  map[string]*hardware.FeetechBus

	simServos   map[string]*hardware.SimServo
	simSteppers map[string]*hardware.SimStepper
}

func newDrivers(hw config.HardwareConfig) *drivers {
	d := &drivers{
		busCfg:      make(map[string]config.FeetechBusConfig, len(hw.Feetech)),
		buses:       make(map[string]*hardware.FeetechBus),
		simServos:   make(map[string]*hardware.SimServo),
		simSteppers: make(map[string]*hardware.SimStepper),
	}
	for _, b := range hw.Feetech {
		d.busCfg[b.Name] = b
	}
	return d
}

// servo returns the ServoDriver for a servo-backed actuator or smooth
// rotator called name.
func (d *drivers) servo(ctx context.Context, name, driver string, fb config.FeetechBinding, sim config.SimBinding) (actuator.ServoDriver, error) {
	switch driver {
	case config.DriverSim:
		s := hardware.NewSimServo(sim.Angle)
		d.simServos[name] = s
		return s, nil
	case config.DriverFeetech:
		bus, err := d.feetech(ctx, fb.Bus)
		if err != nil {
			return nil, err
		}
		servo, err := bus.Servo(fb.ID)
		if err != nil {
			return nil, err
		}
		return servo, nil
	default:
		return nil, fmt.Errorf("%s: driver %q cannot drive a servo", name, driver)
	}
}

// stepper returns the StepperDriver for a stepper actuator called name.
func (d *drivers) stepper(name, driver string, g config.GPIOBinding) (actuator.StepperDriver, error) {
	switch driver {
	case config.DriverSim:
		s := hardware.NewSimStepper()
		d.simSteppers[name] = s
		return s, nil
	case config.DriverGPIO:
		stepper, err := hardware.OpenGPIOStepper(hardware.GPIOStepperConfig{
			StepPin:          g.StepPin,
			DirPin:           g.DirPin,
			EnablePin:        g.EnablePin,
			PulseWidth:       time.Duration(g.PulseWidthUS) * time.Microsecond,
			InvertDir:        g.InvertDir,
			EnableActiveHigh: g.EnableActiveHigh,
		})
		if err != nil {
			return nil, err
		}
		return stepper, nil
	default:
		return nil, fmt.Errorf("%s: driver %q cannot drive a stepper", name, driver)
	}
}

// feetech opens (once) and returns the named bus.
func (d *drivers) feetech(ctx context.Context, name string) (*hardware.FeetechBus, error) {
	if bus, ok := d.buses[name]; ok {
		return bus, nil
	}
	cfg, ok := d.busCfg[name]
	if !ok {
		return nil, fmt.Errorf("feetech bus %q is not configured", name)
	}

	bus, err := hardware.OpenFeetech(ctx, hardware.FeetechConfig{
		Port:     cfg.Port,
		BaudRate: cfg.BaudRate,
		Timeout:  time.Duration(cfg.TimeoutMS) * time.Millisecond,
		ScanFrom: cfg.ScanFrom,
		ScanTo:   cfg.ScanTo,
	})
	if err != nil {
		return nil, fmt.Errorf("opening feetech bus %q: %w", name, err)
	}
	d.buses[name] = bus
	return bus, nil
}

func (d *drivers) close() error {
	var errs []error
	for name, bus := range d.buses {
		if err := bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing feetech bus %q: %w", name, err))
		}
	}
	clear(d.buses)
	return errors.Join(errs...)
}
