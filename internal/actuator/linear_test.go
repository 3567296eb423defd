package actuator

import (
	"context"
	"testing"
)

func TestServoLinear_Current(t *testing.T) {
	tests := []struct {
		name  string
		cfg   ServoConfig
		angle float64
		want  float64
	}{
		{"home", ServoConfig{Home: 10, Maximum: 110}, 10, 0},
		{"half", ServoConfig{Home: 10, Maximum: 110}, 60, 50},
		{"full", ServoConfig{Home: 10, Maximum: 110}, 110, 100},
		{"reversed half", ServoConfig{Home: 160, Maximum: 60}, 110, 50},
		{"reversed full", ServoConfig{Home: 160, Maximum: 60}, 60, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newServo(t, tt.angle, tt.cfg)
			l := NewServoLinear(s)
			if got := l.Current(); got != tt.want {
				t.Errorf("Current() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestServoLinear_ExtendReversed(t *testing.T) {
	s, drv := newServo(t, 160, ServoConfig{Home: 160, Maximum: 60, Delta: 10})
	l := NewServoLinear(s)

	calls := 0
	for {
		calls++
		done, err := l.ExtendTo(context.Background(), 50)
		if err != nil {
			t.Fatalf("ExtendTo: %v", err)
		}
		if done {
			break
		}
		if calls > 100 {
			t.Fatal("ExtendTo never finished")
		}
	}

	if len(drv.writes) != 5 {
		t.Errorf("writes = %d, want 5", len(drv.writes))
	}
	if drv.writes[0] != 150 {
		t.Errorf("first write = %v, want 150 (decreasing angle extends)", drv.writes[0])
	}
	if l.Current() != 50 {
		t.Errorf("Current() = %v, want 50", l.Current())
	}
}

func TestServoLinear_ClampsPercentage(t *testing.T) {
	s, drv := newServo(t, 0, ServoConfig{Home: 0, Maximum: 90})
	l := NewServoLinear(s)

	if _, err := l.ExtendTo(context.Background(), 250); err != nil {
		t.Fatalf("ExtendTo: %v", err)
	}
	if drv.writes[len(drv.writes)-1] != 90 {
		t.Errorf("last write = %v, want 90", drv.writes[len(drv.writes)-1])
	}
	if l.Current() != 100 {
		t.Errorf("Current() = %v, want 100", l.Current())
	}
}

func TestActuatorVariants(t *testing.T) {
	s, _ := newServo(t, 45, ServoConfig{Home: 0, Maximum: 90})

	rot := OfRotator(s)
	if rot.Kind() != KindRotator || rot.Position() != 45 || rot.Name() != "servo" {
		t.Errorf("rotator variant = (%v, %v, %v)", rot.Kind(), rot.Position(), rot.Name())
	}

	lin := OfLinear(NewServoLinear(s))
	if lin.Kind() != KindLinear || lin.Position() != 50 {
		t.Errorf("linear variant = (%v, %v)", lin.Kind(), lin.Position())
	}
}
