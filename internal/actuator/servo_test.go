package actuator

import (
	"context"
	"errors"
	"math"
	"testing"
)

func newServo(t *testing.T, start float64, cfg ServoConfig) (*ServoRotator, *recordingServo) {
	t.Helper()
	drv := &recordingServo{angle: start}
	s, err := NewServoRotator(context.Background(), "servo", drv, cfg)
	if err != nil {
		t.Fatalf("NewServoRotator: %v", err)
	}
	return s, drv
}

func TestServoRotator_DeltaMoves(t *testing.T) {
	s, drv := newServo(t, 60, ServoConfig{Home: 0, Maximum: 90, Delta: 1})

	calls := runUntilDone(t, s, 32, 1000)

	if len(drv.writes) != 28 {
		t.Errorf("writes = %d, want 28", len(drv.writes))
	}
	if calls != 28 {
		t.Errorf("calls = %d, want 28", calls)
	}
	for i, w := range drv.writes {
		if want := 59 - float64(i); w != want {
			t.Fatalf("write %d = %v, want %v", i, w, want)
		}
	}
	if s.Current() != 32 {
		t.Errorf("Current() = %v, want 32", s.Current())
	}
}

func TestServoRotator_WithinDeltaNoWrites(t *testing.T) {
	tests := []struct {
		name   string
		cfg    ServoConfig
		start  float64
		target float64
	}{
		{"within delta", ServoConfig{Maximum: 180, Delta: 2}, 100, 101.5},
		{"exact", ServoConfig{Maximum: 180, Delta: 1}, 100, 100},
		{"within precision no delta", ServoConfig{Maximum: 180}, 100, 100.05},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, drv := newServo(t, tt.start, tt.cfg)
			done, err := s.MoveTowards(context.Background(), tt.target)
			if err != nil {
				t.Fatalf("MoveTowards: %v", err)
			}
			if !done {
				t.Error("expected done")
			}
			if len(drv.writes) != 0 {
				t.Errorf("writes = %v, want none", drv.writes)
			}
		})
	}
}

func TestServoRotator_SingleJump(t *testing.T) {
	s, drv := newServo(t, 10, ServoConfig{Home: 0, Maximum: 180})

	done, err := s.MoveTowards(context.Background(), 120)
	if err != nil {
		t.Fatalf("MoveTowards: %v", err)
	}
	if !done {
		t.Error("single jump should report done")
	}
	if len(drv.writes) != 1 || drv.writes[0] != 120 {
		t.Errorf("writes = %v, want [120]", drv.writes)
	}
}

func TestServoRotator_ClampsToBounds(t *testing.T) {
	tests := []struct {
		name   string
		cfg    ServoConfig
		start  float64
		target float64
		lo, hi float64
	}{
		{"above max", ServoConfig{Home: 0, Maximum: 90, Delta: 5}, 80, 200, 0, 90},
		{"below home", ServoConfig{Home: 0, Maximum: 90, Delta: 5}, 10, -50, 0, 90},
		{"reversed bounds", ServoConfig{Home: 150, Maximum: 30, Delta: 6}, 60, 0, 30, 150},
		{"infinite", ServoConfig{Home: 20, Maximum: 160, Delta: 3}, 100, math.Inf(1), 20, 160},
		{"jump", ServoConfig{Home: 0, Maximum: 90}, 45, 135, 0, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, drv := newServo(t, tt.start, tt.cfg)
			runUntilDone(t, s, tt.target, 1000)

			if len(drv.writes) == 0 {
				t.Fatal("expected at least one write")
			}
			for _, w := range drv.writes {
				if w < tt.lo || w > tt.hi {
					t.Errorf("write %v outside [%v, %v]", w, tt.lo, tt.hi)
				}
			}
			want := math.Max(tt.lo, math.Min(tt.hi, tt.target))
			if s.Current() != want {
				t.Errorf("Current() = %v, want %v", s.Current(), want)
			}
		})
	}
}

func TestServoRotator_HardwareError(t *testing.T) {
	s, drv := newServo(t, 0, ServoConfig{Maximum: 90, Delta: 1})
	drv.failAt = 2

	if _, err := s.MoveTowards(context.Background(), 10); err != nil {
		t.Fatalf("first move: %v", err)
	}
	_, err := s.MoveTowards(context.Background(), 10)
	if !errors.Is(err, ErrHardwareIO) {
		t.Fatalf("error = %v, want ErrHardwareIO", err)
	}
	if s.Current() != 1 {
		t.Errorf("Current() = %v, want 1 (failed write not applied)", s.Current())
	}
}

func TestNewServoRotator_ReadError(t *testing.T) {
	drv := &recordingServo{readErr: errBus}
	_, err := NewServoRotator(context.Background(), "servo", drv, ServoConfig{Maximum: 90})
	if !errors.Is(err, ErrHardwareIO) {
		t.Errorf("error = %v, want ErrHardwareIO", err)
	}
}
