package config

import "fmt"

// Actuator kinds.
const (
	KindStepper = "stepper"
	KindServo   = "servo"
	KindLinear  = "linear"
)

// Driver names.
const (
	DriverSim     = "sim"
	DriverFeetech = "feetech"
	DriverGPIO    = "gpio"
)

var speedNames = []string{"very_slow", "slow", "normal", "fast", "very_fast"}

func validSpeed(name string) bool {
	for _, s := range speedNames {
		if s == name {
			return true
		}
	}
	return false
}

// ActuatorConfig declares one step-driven actuator.
type ActuatorConfig struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`   // stepper, servo, linear
	Driver string `yaml:"driver"` // sim, feetech, gpio

	Stepper StepperSettings `yaml:"stepper"`
	Servo   ServoSettings   `yaml:"servo"`

	Feetech FeetechBinding `yaml:"feetech"`
	GPIO    GPIOBinding    `yaml:"gpio"`
	Sim     SimBinding     `yaml:"sim"`
}

// StepperSettings configures a stepper-backed rotator.
type StepperSettings struct {
	StepsPerRotation  int     `yaml:"steps_per_rotation"`
	GearRatio         float64 `yaml:"gear_ratio"`
	StepsPerIncrement int     `yaml:"steps_per_increment"`
	StartAngle        float64 `yaml:"start_angle"`
}

// ServoSettings configures a servo-backed rotator or linear actuator.
type ServoSettings struct {
	Home      float64 `yaml:"home"`
	Maximum   float64 `yaml:"maximum"`
	Delta     float64 `yaml:"delta"`
	Precision float64 `yaml:"precision"`
}

// FeetechBinding attaches a servo to a configured feetech bus.
type FeetechBinding struct {
	Bus string `yaml:"bus"`
	ID  int    `yaml:"id"`
}

// GPIOBinding names the pins of a step/dir driver board.
type GPIOBinding struct {
	StepPin          string `yaml:"step_pin"`
	DirPin           string `yaml:"dir_pin"`
	EnablePin        string `yaml:"enable_pin"`
	PulseWidthUS     int    `yaml:"pulse_width_us"`
	InvertDir        bool   `yaml:"invert_dir"`
	EnableActiveHigh bool   `yaml:"enable_active_high"`
}

// SimBinding sets the initial state of a simulated driver.
type SimBinding struct {
	Angle float64 `yaml:"angle"`
}

// SmoothRotatorConfig declares a servo driven along time-based profiles.
type SmoothRotatorConfig struct {
	Name    string         `yaml:"name"`
	Driver  string         `yaml:"driver"` // sim, feetech
	Home    float64        `yaml:"home"`
	Maximum float64        `yaml:"maximum"`
	Feetech FeetechBinding `yaml:"feetech"`
	Sim     SimBinding     `yaml:"sim"`
}

// SequenceConfig declares a named sequence of actions.
type SequenceConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Interruptable defaults to true. The stop sequence is always run as
	// non-interruptable.
	Interruptable *bool `yaml:"interruptable"`

	Actions []ActionConfig `yaml:"actions"`
}

// IsInterruptable reports the effective interruptable flag.
func (s SequenceConfig) IsInterruptable() bool {
	return s.Interruptable == nil || *s.Interruptable
}

// ActionConfig declares one action: moves that run concurrently.
type ActionConfig struct {
	Name  string       `yaml:"name"`
	Speed string       `yaml:"speed"`
	Moves []MoveConfig `yaml:"moves"`
}

// MoveConfig declares a single movement. Exactly one of To, By, Extend,
// ForwardUntil or BackwardUntil must be set. Until adds a trigger stop
// check to To, By or Extend.
type MoveConfig struct {
	Actuator      string   `yaml:"actuator"`
	To            *float64 `yaml:"to"`
	By            *float64 `yaml:"by"`
	Extend        *float64 `yaml:"extend"`
	ForwardUntil  string   `yaml:"forward_until"`
	BackwardUntil string   `yaml:"backward_until"`
	Until         string   `yaml:"until"`
}

// SceneConfig declares smooth moves started together.
type SceneConfig struct {
	Name  string            `yaml:"name"`
	Moves []SceneMoveConfig `yaml:"moves"`
}

// SceneMoveConfig moves one smooth rotator.
type SceneMoveConfig struct {
	Rotator    string  `yaml:"rotator"`
	To         float64 `yaml:"to"`
	DurationMS int     `yaml:"duration_ms"`
}

// validateRig checks actuators, sequences and scenes for consistency.
func (c *Config) validateRig() []string {
	var errs []string

	buses := make(map[string]bool)
	for i, b := range c.Hardware.Feetech {
		if b.Name == "" || b.Port == "" {
			errs = append(errs, fmt.Sprintf("hardware.feetech[%d]: name and port are required", i))
		}
		buses[b.Name] = true
	}

	triggers := make(map[string]bool)
	for _, t := range c.Triggers {
		triggers[t] = true
	}

	kinds := make(map[string]string)
	for i, a := range c.Actuators {
		where := fmt.Sprintf("actuators[%d] %q", i, a.Name)
		if a.Name == "" {
			errs = append(errs, fmt.Sprintf("actuators[%d]: name is required", i))
			continue
		}
		if _, dup := kinds[a.Name]; dup {
			errs = append(errs, where+": duplicate name")
		}
		kinds[a.Name] = a.Kind

		switch a.Kind {
		case KindStepper:
			if a.Stepper.StepsPerRotation <= 0 {
				errs = append(errs, where+": stepper.steps_per_rotation must be positive")
			}
			if a.Driver != DriverSim && a.Driver != DriverGPIO {
				errs = append(errs, where+": stepper driver must be sim or gpio")
			}
			if a.Driver == DriverGPIO && (a.GPIO.StepPin == "" || a.GPIO.DirPin == "") {
				errs = append(errs, where+": gpio.step_pin and gpio.dir_pin are required")
			}
		case KindServo, KindLinear:
			if a.Servo.Delta < 0 {
				errs = append(errs, where+": servo.delta must not be negative")
			}
			if a.Kind == KindLinear && a.Servo.Home == a.Servo.Maximum {
				errs = append(errs, where+": linear actuator needs servo.home != servo.maximum")
			}
			errs = append(errs, checkServoDriver(where, a.Driver, a.Feetech, buses)...)
		default:
			errs = append(errs, where+": kind must be stepper, servo or linear")
		}
	}

	smooth := make(map[string]bool)
	for i, r := range c.SmoothRotators {
		where := fmt.Sprintf("smooth_rotators[%d] %q", i, r.Name)
		if r.Name == "" {
			errs = append(errs, fmt.Sprintf("smooth_rotators[%d]: name is required", i))
			continue
		}
		if _, dup := kinds[r.Name]; dup || smooth[r.Name] {
			errs = append(errs, where+": duplicate name")
		}
		smooth[r.Name] = true
		errs = append(errs, checkServoDriver(where, r.Driver, r.Feetech, buses)...)
	}

	seqs := make(map[string]bool)
	for i, s := range c.Sequences {
		where := fmt.Sprintf("sequences[%d] %q", i, s.Name)
		if s.Name == "" {
			errs = append(errs, fmt.Sprintf("sequences[%d]: name is required", i))
			continue
		}
		if seqs[s.Name] {
			errs = append(errs, where+": duplicate name")
		}
		seqs[s.Name] = true

		for j, act := range s.Actions {
			aw := fmt.Sprintf("%s action %d", where, j)
			if act.Speed != "" && !validSpeed(act.Speed) {
				errs = append(errs, fmt.Sprintf("%s: unknown speed %q", aw, act.Speed))
			}
			for k, m := range act.Moves {
				errs = append(errs, checkMove(fmt.Sprintf("%s move %d", aw, k), m, kinds, triggers)...)
			}
		}
	}
	if stop := c.Executor.StopSequence; stop != "" && len(c.Sequences) > 0 && !seqs[stop] {
		errs = append(errs, fmt.Sprintf("executor.stop_sequence %q is not a defined sequence", stop))
	}

	scenes := make(map[string]bool)
	for i, sc := range c.Scenes {
		where := fmt.Sprintf("scenes[%d] %q", i, sc.Name)
		if sc.Name == "" || scenes[sc.Name] {
			errs = append(errs, where+": name is required and must be unique")
		}
		scenes[sc.Name] = true
		for k, m := range sc.Moves {
			if !smooth[m.Rotator] {
				errs = append(errs, fmt.Sprintf("%s move %d: unknown smooth rotator %q", where, k, m.Rotator))
			}
			if m.DurationMS < 0 {
				errs = append(errs, fmt.Sprintf("%s move %d: duration_ms must not be negative", where, k))
			}
		}
	}

	return errs
}

func checkServoDriver(where, driver string, fb FeetechBinding, buses map[string]bool) []string {
	switch driver {
	case DriverSim:
		return nil
	case DriverFeetech:
		if !buses[fb.Bus] {
			return []string{fmt.Sprintf("%s: unknown feetech bus %q", where, fb.Bus)}
		}
		if fb.ID <= 0 {
			return []string{where + ": feetech.id must be positive"}
		}
		return nil
	default:
		return []string{where + ": servo driver must be sim or feetech"}
	}
}

func checkMove(where string, m MoveConfig, kinds map[string]string, triggers map[string]bool) []string {
	var errs []string

	kind, ok := kinds[m.Actuator]
	if !ok {
		errs = append(errs, fmt.Sprintf("%s: unknown actuator %q", where, m.Actuator))
	}

	set := 0
	for _, present := range []bool{m.To != nil, m.By != nil, m.Extend != nil, m.ForwardUntil != "", m.BackwardUntil != ""} {
		if present {
			set++
		}
	}
	if set != 1 {
		errs = append(errs, where+": exactly one of to, by, extend, forward_until, backward_until is required")
	}
	if ok && m.Extend != nil && kind != KindLinear {
		errs = append(errs, fmt.Sprintf("%s: extend needs a linear actuator, %q is %s", where, m.Actuator, kind))
	}

	for _, t := range []string{m.ForwardUntil, m.BackwardUntil, m.Until} {
		if t != "" && !triggers[t] {
			errs = append(errs, fmt.Sprintf("%s: unknown trigger %q", where, t))
		}
	}
	return errs
}
