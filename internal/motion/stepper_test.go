package motion

import (
	"context"
	"errors"
	"testing"
)

func drain(t *testing.T, s *Stepper, limit int) error {
	t.Helper()
	ctx := context.Background()
	for range limit {
		more, err := s.Step(ctx)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	t.Fatalf("stepper still running after %d ticks", limit)
	return nil
}

func TestStepper_ConcurrentPairsFinishWithSlowest(t *testing.T) {
	a, actA := rot("a", 0)
	b, actB := rot("b", 0)

	action := NewAction("both").RotateTo(actA, 45).RotateTo(actB, 90).Build()
	s := NewStepper(action)
	if err := drain(t, s, 1000); err != nil {
		t.Fatalf("drain: %v", err)
	}

	if s.Ticks() != 90 {
		t.Errorf("Ticks() = %d, want 90", s.Ticks())
	}
	if a.writes != 45 || a.pos != 45 {
		t.Errorf("a: writes=%d pos=%v, want 45/45", a.writes, a.pos)
	}
	if b.writes != 90 || b.pos != 90 {
		t.Errorf("b: writes=%d pos=%v, want 90/90", b.writes, b.pos)
	}
	if !s.Done() {
		t.Error("Done() = false after drain")
	}
}

func TestStepper_InsertionOrder(t *testing.T) {
	var log []string
	a, actA := rot("a", 0)
	b, actB := rot("b", 0)
	a.log, b.log = &log, &log

	s := NewStepper(NewAction("").RotateTo(actB, 2).RotateTo(actA, 3).Build())
	if err := drain(t, s, 10); err != nil {
		t.Fatalf("drain: %v", err)
	}

	want := []string{"b", "a", "b", "a", "a"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log = %v, want %v", log, want)
		}
	}
}

func TestStepper_ForwardUntilHalts(t *testing.T) {
	u, act := rot("pan", 0)
	limit := false
	check := func() bool { return limit }

	s := NewStepper(NewAction("seek").ForwardUntil(act, check).Build())
	ctx := context.Background()
	for range 5 {
		more, err := s.Step(ctx)
		if err != nil || !more {
			t.Fatalf("Step() = %v, %v; want true, nil", more, err)
		}
	}

	limit = true
	more, err := s.Step(ctx)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if more {
		t.Error("Step() = true after stop check fired")
	}
	if u.writes != 5 {
		t.Errorf("writes = %d, want 5 (no write once stopped)", u.writes)
	}
}

func TestStepper_BackwardUntilAlreadyStopped(t *testing.T) {
	u, act := rot("pan", 10)

	s := NewStepper(NewAction("").BackwardUntil(act, func() bool { return true }).Build())
	if err := drain(t, s, 2); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if u.writes != 0 {
		t.Errorf("writes = %d, want 0", u.writes)
	}
	if s.Ticks() != 1 {
		t.Errorf("Ticks() = %d, want 1", s.Ticks())
	}
}

func TestStepper_RelativeResolvedAtCreation(t *testing.T) {
	u, act := rot("tilt", 30)

	action := NewAction("").RotateBy(act, -10).Build()
	u.pos = 40 // moved after build, before stepping
	s := NewStepper(action)
	if err := drain(t, s, 100); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if u.pos != 30 {
		t.Errorf("pos = %v, want 30", u.pos)
	}
}

func TestStepper_EmptyAction(t *testing.T) {
	s := NewStepper(NewAction("noop").Build())
	more, err := s.Step(context.Background())
	if more || err != nil {
		t.Errorf("Step() = %v, %v; want false, nil", more, err)
	}
	if s.Ticks() != 0 {
		t.Errorf("Ticks() = %d, want 0", s.Ticks())
	}
}

func TestStepper_HardwareError(t *testing.T) {
	_, actA := rot("a", 0)
	b, actB := rot("b", 0)
	b.failAt = 3

	s := NewStepper(NewAction("").RotateTo(actA, 10).RotateTo(actB, 10).Build())
	err := drain(t, s, 100)

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("error = %v, want *StepError", err)
	}
	if stepErr.Actuator != "b" || stepErr.Pair != 1 {
		t.Errorf("StepError = %+v, want actuator b pair 1", stepErr)
	}
	if !errors.Is(err, errJam) {
		t.Error("errors.Is(err, errJam) = false")
	}
	if s.Ticks() != 3 {
		t.Errorf("Ticks() = %d, want 3", s.Ticks())
	}
}
