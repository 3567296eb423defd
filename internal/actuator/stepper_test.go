package actuator

import (
	"context"
	"errors"
	"math"
	"testing"
)

func runUntilDone(t *testing.T, r Rotator, target float64, limit int) int {
	t.Helper()
	calls := 0
	for {
		calls++
		done, err := r.MoveTowards(context.Background(), target)
		if err != nil {
			t.Fatalf("MoveTowards(%v): %v", target, err)
		}
		if done {
			return calls
		}
		if calls > limit {
			t.Fatalf("MoveTowards(%v) not done after %d calls", target, limit)
		}
	}
}

func TestStepperRotator_FloorConvention(t *testing.T) {
	drv := &recordingStepper{}
	s, err := NewStepperRotator("pan", drv, StepperConfig{StepsPerRotation: 200, GearRatio: 1, StartAngle: 9})
	if err != nil {
		t.Fatalf("NewStepperRotator: %v", err)
	}

	runUntilDone(t, s, 83, 1000)

	want := int(math.Floor(83*200/360.0)) - int(math.Floor(9*200/360.0))
	if want != 41 {
		t.Fatalf("test arithmetic: want 41, got %d", want)
	}
	if drv.forward != want {
		t.Errorf("forward steps = %d, want %d", drv.forward, want)
	}
	if drv.backward != 0 {
		t.Errorf("backward steps = %d, want 0", drv.backward)
	}
	if s.Steps() != 46 {
		t.Errorf("Steps() = %d, want 46", s.Steps())
	}
}

func TestStepperRotator_Backward(t *testing.T) {
	drv := &recordingStepper{}
	s, _ := NewStepperRotator("tilt", drv, StepperConfig{StepsPerRotation: 200, StartAngle: 90})

	runUntilDone(t, s, 0, 1000)

	if drv.backward != 50 {
		t.Errorf("backward steps = %d, want 50", drv.backward)
	}
	if s.Current() != 0 {
		t.Errorf("Current() = %v, want 0", s.Current())
	}
}

func TestStepperRotator_AtTargetNoWrites(t *testing.T) {
	drv := &recordingStepper{}
	s, _ := NewStepperRotator("pan", drv, StepperConfig{StepsPerRotation: 200, StartAngle: 45})

	// 45.5 degrees still floors onto the same step.
	done, err := s.MoveTowards(context.Background(), 45.5)
	if err != nil {
		t.Fatalf("MoveTowards: %v", err)
	}
	if !done {
		t.Error("expected done for target on current step")
	}
	if drv.forward+drv.backward != 0 {
		t.Errorf("expected no steps, got %d", drv.forward+drv.backward)
	}
}

func TestStepperRotator_GearRatioIncrement(t *testing.T) {
	drv := &recordingStepper{}
	s, _ := NewStepperRotator("arm", drv, StepperConfig{StepsPerRotation: 200, GearRatio: 4})

	// 10 degrees at 4:1 is floor(10*800/360) = 22 steps, 4 per call.
	calls := runUntilDone(t, s, 10, 100)

	if drv.forward != 22 {
		t.Errorf("forward steps = %d, want 22", drv.forward)
	}
	if calls != 6 {
		t.Errorf("calls = %d, want 6", calls)
	}
}

func TestStepperRotator_InfiniteTarget(t *testing.T) {
	drv := &recordingStepper{}
	s, _ := NewStepperRotator("pan", drv, StepperConfig{StepsPerRotation: 200})

	for range 10 {
		done, err := s.MoveTowards(context.Background(), math.Inf(-1))
		if err != nil {
			t.Fatalf("MoveTowards: %v", err)
		}
		if done {
			t.Fatal("infinite target must never report done")
		}
	}
	if drv.backward != 10 {
		t.Errorf("backward steps = %d, want 10", drv.backward)
	}
}

func TestStepperRotator_HardwareError(t *testing.T) {
	drv := &recordingStepper{failAt: 3}
	s, _ := NewStepperRotator("pan", drv, StepperConfig{StepsPerRotation: 200})

	var err error
	for range 5 {
		if _, err = s.MoveTowards(context.Background(), 90); err != nil {
			break
		}
	}
	if !errors.Is(err, ErrHardwareIO) {
		t.Fatalf("error = %v, want ErrHardwareIO", err)
	}
	if !errors.Is(err, errBus) {
		t.Errorf("error = %v, want wrapped driver error", err)
	}
	if s.Steps() != 2 {
		t.Errorf("Steps() = %d, want 2 (failed step not counted)", s.Steps())
	}
}

func TestStepperRotator_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  StepperConfig
	}{
		{"zero steps", StepperConfig{StepsPerRotation: 0}},
		{"negative gear", StepperConfig{StepsPerRotation: 200, GearRatio: -2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStepperRotator("x", &recordingStepper{}, tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestStepperRotator_NaN(t *testing.T) {
	s, _ := NewStepperRotator("pan", &recordingStepper{}, StepperConfig{StepsPerRotation: 200})
	if _, err := s.MoveTowards(context.Background(), math.NaN()); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("error = %v, want ErrInvalidTarget", err)
	}
}

func TestStepperRotator_CancelledIsNotHardwareError(t *testing.T) {
	drv := &recordingStepper{}
	s, err := NewStepperRotator("pan", drv, StepperConfig{StepsPerRotation: 200, StepsPerIncrement: 4})
	if err != nil {
		t.Fatalf("NewStepperRotator: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.MoveTowards(ctx, 90)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrHardwareIO) {
		t.Errorf("error = %v, should not be ErrHardwareIO", err)
	}
	if s.Steps() != 0 {
		t.Errorf("Steps() = %d, want 0", s.Steps())
	}
}
