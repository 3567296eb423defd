package motion

import (
	"errors"
	"math"
	"testing"
)

func TestActionBuilder_RebuildReadsLiveValues(t *testing.T) {
	_, act := rot("head", 0)
	sensor := 15.0

	exec := NewAction("track").
		AddFunc(act, func() Movement { return To(sensor) }).
		Executable()

	if got := exec.Action().Pairs()[0].Movement.Target(); got != 15 {
		t.Fatalf("first target = %v, want 15", got)
	}

	sensor = 70
	again := exec.Rebuild()
	if got := again.Action().Pairs()[0].Movement.Target(); got != 70 {
		t.Errorf("rebuilt target = %v, want 70", got)
	}
	if got := exec.Action().Pairs()[0].Movement.Target(); got != 15 {
		t.Errorf("original target changed to %v", got)
	}
}

func TestActionBuilder_RebuildIdempotent(t *testing.T) {
	_, actA := rot("a", 0)
	_, actB := rot("b", 0)
	b := NewAction("fixed").WithSpeed(SpeedFast).RotateTo(actA, 10).ExtendTo(actB, 50)

	first := b.Build()
	second := b.Executable().Rebuild().Action()

	if first.Len() != second.Len() || first.Speed() != second.Speed() || first.Name() != second.Name() {
		t.Fatalf("rebuild differs: %+v vs %+v", first, second)
	}
	for i, p := range first.Pairs() {
		q := second.Pairs()[i]
		if p.Actuator.Name() != q.Actuator.Name() || p.Movement.Target() != q.Movement.Target() {
			t.Errorf("pair %d differs", i)
		}
	}
	if b.Len() != 2 {
		t.Errorf("builder mutated: Len() = %d", b.Len())
	}
}

func TestActionBuilder_DefaultSpeed(t *testing.T) {
	if got := NewAction("").Build().Speed(); got != SpeedNormal {
		t.Errorf("Speed() = %v, want normal", got)
	}
	if got := NewAction("").WithSpeed(Speed(42)).Build().Speed(); got != SpeedNormal {
		t.Errorf("invalid speed = %v, want normal", got)
	}
}

func TestMovement_Constructors(t *testing.T) {
	tests := []struct {
		name     string
		m        Movement
		target   float64
		relative bool
		check    bool
	}{
		{"to", To(12), 12, false, false},
		{"by", By(-5), -5, true, false},
		{"forward", ForwardUntil(func() bool { return false }), math.Inf(1), false, true},
		{"backward", BackwardUntil(func() bool { return false }), math.Inf(-1), false, true},
		{"with check", To(3).WithStopCheck(func() bool { return true }), 3, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.m.Target() != tt.target || tt.m.Relative() != tt.relative || tt.m.HasStopCheck() != tt.check {
				t.Errorf("got target=%v relative=%v check=%v", tt.m.Target(), tt.m.Relative(), tt.m.HasStopCheck())
			}
		})
	}
	if got := By(-5).Resolve(20); got != 15 {
		t.Errorf("By(-5).Resolve(20) = %v, want 15", got)
	}
	if got := To(7).Resolve(20); got != 7 {
		t.Errorf("To(7).Resolve(20) = %v, want 7", got)
	}
}

func TestSequence_SnapshotAndLazyBuild(t *testing.T) {
	_, act := rot("arm", 0)
	target := 10.0
	first := NewAction("one").AddFunc(act, func() Movement { return To(target) })
	sb := NewSequence("demo").Then(first, NewAction("two").RotateTo(act, 0))
	seq := sb.Build()

	// Changes after Build are not visible to the sequence.
	first.RotateTo(act, 99)
	sb.Then(NewAction("three"))

	if seq.Len() != 2 || seq.Name() != "demo" {
		t.Fatalf("sequence = %q len %d, want demo len 2", seq.Name(), seq.Len())
	}

	target = 25
	ea, err := seq.Action(0)
	if err != nil {
		t.Fatalf("Action(0): %v", err)
	}
	pairs := ea.Action().Pairs()
	if len(pairs) != 1 || pairs[0].Movement.Target() != 25 {
		t.Errorf("Action(0) pairs = %d target %v, want 1 target 25", len(pairs), pairs[0].Movement.Target())
	}

	if _, err := seq.Action(2); !errors.Is(err, ErrActionIndex) {
		t.Errorf("Action(2) error = %v, want ErrActionIndex", err)
	}
	if got := len(seq.Actuators()); got != 1 {
		t.Errorf("Actuators() = %d, want 1", got)
	}
}

func TestParseSpeed(t *testing.T) {
	tests := []struct {
		in      string
		want    Speed
		wantErr bool
	}{
		{"very_slow", SpeedVerySlow, false},
		{"VERY-FAST", SpeedVeryFast, false},
		{" normal ", SpeedNormal, false},
		{"warp", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSpeed(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSpeed(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseSpeed(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
