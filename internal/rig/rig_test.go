package rig

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/gray-motion-core/internal/actuator"
	"github.com/nerrad567/gray-motion-core/internal/executor"
	"github.com/nerrad567/gray-motion-core/internal/infrastructure/config"
	"github.com/nerrad567/gray-motion-core/internal/motion"
	"github.com/nerrad567/gray-motion-core/internal/smooth"
)

const benchYAML = `
rig:
  id: bench
  name: Bench Rig
  precision: 0.1
database:
  enabled: false
executor:
  tick_intervals_ms: { very_slow: 0, slow: 0, normal: 0, fast: 0, very_fast: 0 }
triggers: [limit]
actuators:
  - { name: base, kind: stepper, driver: sim, stepper: { steps_per_rotation: 200 } }
  - { name: shoulder, kind: servo, driver: sim, servo: { home: 0, maximum: 180, delta: 1 } }
  - { name: gripper, kind: linear, driver: sim, servo: { home: 10, maximum: 80 }, sim: { angle: 10 } }
smooth_rotators:
  - { name: head, driver: sim, home: 0, maximum: 180 }
sequences:
  - name: wave
    description: raise and open
    actions:
      - name: raise
        speed: fast
        moves:
          - { actuator: shoulder, to: 90 }
          - { actuator: gripper, extend: 100 }
      - name: seek
        moves:
          - { actuator: base, forward_until: limit }
  - name: hold
    interruptable: false
    actions:
      - moves: [{ actuator: shoulder, by: 5 }]
  - name: stop
    actions:
      - speed: very_fast
        moves: [{ actuator: shoulder, to: 0 }]
scenes:
  - name: nod
    moves: [{ rotator: head, to: 45, duration_ms: 500 }]
`

func loadConfig(t *testing.T) *config.Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(benchYAML), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	return cfg
}

func newRig(t *testing.T) *Rig {
	t.Helper()

	r, err := New(context.Background(), loadConfig(t), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { r.Close(context.Background()) }) //nolint:errcheck // Test cleanup
	return r
}

// runAction steps action i of seq to completion, returning the tick count.
func runAction(t *testing.T, seq motion.Sequence, i int, limit int) int {
	t.Helper()

	ea, err := seq.Action(i)
	if err != nil {
		t.Fatalf("Action(%d) error = %v", i, err)
	}
	stepper := motion.NewStepper(ea.Action())
	for range limit {
		more, err := stepper.Step(context.Background())
		if err != nil {
			t.Fatalf("Step() error = %v", err)
		}
		if !more {
			return stepper.Ticks()
		}
	}
	t.Fatalf("action %d did not finish within %d ticks", i, limit)
	return 0
}

func TestNew(t *testing.T) {
	r := newRig(t)

	if r.ID() != "bench" || r.Name() != "Bench Rig" {
		t.Errorf("ID/Name = %q/%q", r.ID(), r.Name())
	}

	want := []struct {
		name string
		kind actuator.Kind
	}{
		{"base", actuator.KindRotator},
		{"shoulder", actuator.KindRotator},
		{"gripper", actuator.KindLinear},
	}
	got := r.Actuators()
	if len(got) != len(want) {
		t.Fatalf("Actuators() len = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Name() != w.name || got[i].Kind() != w.kind {
			t.Errorf("actuator %d = %s/%s, want %s/%s", i, got[i].Name(), got[i].Kind(), w.name, w.kind)
		}
	}

	if _, err := r.Actuator("elbow"); !errors.Is(err, ErrUnknownActuator) {
		t.Errorf("Actuator(elbow) error = %v, want ErrUnknownActuator", err)
	}
	if _, err := r.Rotator("head"); err != nil {
		t.Errorf("Rotator(head) error = %v", err)
	}
	if _, ok := r.SimServo("shoulder"); !ok {
		t.Error("SimServo(shoulder) not found")
	}
	if _, ok := r.SimStepper("base"); !ok {
		t.Error("SimStepper(base) not found")
	}
}

func TestNewRejectsFeetechWithoutHardware(t *testing.T) {
	cfg := loadConfig(t)
	cfg.Hardware.Feetech = []config.FeetechBusConfig{{Name: "arm-bus", Port: "/dev/null-graymotion"}}
	cfg.Actuators[1].Driver = config.DriverFeetech
	cfg.Actuators[1].Feetech = config.FeetechBinding{Bus: "arm-bus", ID: 1}

	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatal("New() with unreachable feetech bus should fail")
	}
}

func TestSequences(t *testing.T) {
	r := newRig(t)

	infos := r.Sequences()
	if len(infos) != 3 {
		t.Fatalf("Sequences() len = %d, want 3", len(infos))
	}
	tests := []struct {
		name          string
		interruptable bool
		stop          bool
		actions       int
	}{
		{"wave", true, false, 2},
		{"hold", false, false, 1},
		{"stop", false, true, 1},
	}
	for i, tt := range tests {
		got := infos[i]
		if got.Name != tt.name || got.Interruptable != tt.interruptable || got.Stop != tt.stop || len(got.Actions) != tt.actions {
			t.Errorf("Sequences()[%d] = %+v", i, got)
		}
	}
	if infos[0].Actions[0] != "raise" || infos[0].Description != "raise and open" {
		t.Errorf("wave info = %+v", infos[0])
	}
}

func TestRequest(t *testing.T) {
	r := newRig(t)

	tests := []struct {
		name          string
		interruptable bool
		wantErr       error
	}{
		{"wave", true, nil},
		{"hold", false, nil},
		{"stop", false, nil},
		{"dance", false, ErrUnknownSequence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := r.Request(tt.name, "test")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Request() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if req.Interruptable != tt.interruptable {
				t.Errorf("Interruptable = %v, want %v", req.Interruptable, tt.interruptable)
			}
			if req.Sequence.Name() != tt.name || req.Source != "test" {
				t.Errorf("request = %s from %s", req.Sequence.Name(), req.Source)
			}
		})
	}
}

func TestLibrarySequenceMoves(t *testing.T) {
	r := newRig(t)

	seq, err := r.Sequence("wave")
	if err != nil {
		t.Fatalf("Sequence() error = %v", err)
	}
	if seq.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", seq.Len())
	}

	ea, err := seq.Action(0)
	if err != nil {
		t.Fatalf("Action(0) error = %v", err)
	}
	if ea.Speed() != motion.SpeedFast {
		t.Errorf("Speed() = %v, want fast", ea.Speed())
	}

	// Shoulder moves one degree per tick; the gripper jumps in one.
	if ticks := runAction(t, seq, 0, 500); ticks != 90 {
		t.Errorf("raise ticks = %d, want 90", ticks)
	}
	shoulder, _ := r.Actuator("shoulder")
	gripper, _ := r.Actuator("gripper")
	if shoulder.Position() != 90 {
		t.Errorf("shoulder = %v, want 90", shoulder.Position())
	}
	if gripper.Position() != 100 {
		t.Errorf("gripper = %v%%, want 100", gripper.Position())
	}
}

func TestTriggerArmedAtBuild(t *testing.T) {
	r := newRig(t)

	limit, err := r.Triggers().Get("limit")
	if err != nil {
		t.Fatalf("Get(limit) error = %v", err)
	}
	// An edge seen before the action is built must not end it.
	limit.Fire()

	seq, err := r.Sequence("wave")
	if err != nil {
		t.Fatalf("Sequence() error = %v", err)
	}
	ea, err := seq.Action(1)
	if err != nil {
		t.Fatalf("Action(1) error = %v", err)
	}
	if limit.Fired() {
		t.Fatal("building the action should arm the trigger")
	}

	stepper := motion.NewStepper(ea.Action())
	for range 10 {
		if _, err := stepper.Step(context.Background()); err != nil {
			t.Fatalf("Step() error = %v", err)
		}
	}
	if err := r.Triggers().Fire("limit"); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	more, err := stepper.Step(context.Background())
	if err != nil || more {
		t.Fatalf("Step() after trigger = %v, %v; want false, nil", more, err)
	}

	sim, _ := r.SimStepper("base")
	if sim.Position() != 10 {
		t.Errorf("base steps = %d, want 10", sim.Position())
	}
	if limit.Count() != 2 {
		t.Errorf("Count() = %d, want 2", limit.Count())
	}
	if err := r.Triggers().Fire("nope"); !errors.Is(err, ErrUnknownTrigger) {
		t.Errorf("Fire(nope) error = %v, want ErrUnknownTrigger", err)
	}
}

func TestStop(t *testing.T) {
	r := newRig(t)

	req, err := r.Stop("button")
	if err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if req.Interruptable || req.Sequence.Name() != "stop" {
		t.Errorf("Stop() request = %s interruptable=%v", req.Sequence.Name(), req.Interruptable)
	}
	if !r.Killed() {
		t.Error("Stop() should set the kill flag")
	}
	if !r.SchedulerConfig().Kill() {
		t.Error("scheduler kill switch should follow the rig")
	}
}

func TestStopWithoutStopSequence(t *testing.T) {
	cfg := loadConfig(t)
	cfg.Sequences = nil

	r, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer r.Close(context.Background()) //nolint:errcheck // Test cleanup

	req, err := r.Stop("button")
	if err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if req.Interruptable || req.Sequence.Name() != "halt" || req.Sequence.Len() != 0 {
		t.Errorf("Stop() request = %s interruptable=%v len=%d, want empty halt emergency",
			req.Sequence.Name(), req.Interruptable, req.Sequence.Len())
	}
	if !r.Killed() {
		t.Error("Stop() should still set the kill flag")
	}
}

func TestScene(t *testing.T) {
	r := newRig(t)

	moves, err := r.Scene("nod")
	if err != nil {
		t.Fatalf("Scene() error = %v", err)
	}
	if len(moves) != 1 || moves[0].Target != 45 || moves[0].Duration != 500*time.Millisecond || moves[0].Rotator.Name() != "head" {
		t.Errorf("moves = %+v", moves)
	}
	if _, err := r.Scene("shake"); !errors.Is(err, ErrUnknownScene) {
		t.Errorf("Scene(shake) error = %v, want ErrUnknownScene", err)
	}
	if names := r.SceneNames(); len(names) != 1 || names[0] != "nod" {
		t.Errorf("SceneNames() = %v", names)
	}
}

func TestPlaySceneClearsKill(t *testing.T) {
	r := newRig(t)
	r.Kill()

	sched := smooth.NewScheduler(r.SchedulerConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(ctx) //nolint:errcheck // Stopped by cancel

	scene, err := r.PlayScene(sched, "nod")
	if err != nil {
		t.Fatalf("PlayScene() error = %v", err)
	}
	if r.Killed() {
		t.Error("PlayScene() should clear the kill flag")
	}

	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()
	results, err := scene.Wait(waitCtx)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if !smooth.Completed(results) {
		t.Errorf("results = %+v, want completed", results)
	}
	head, _ := r.Rotator("head")
	if head.Angle() != 45 {
		t.Errorf("head = %v, want 45", head.Angle())
	}
}

func TestExecutorConfig(t *testing.T) {
	r := newRig(t)

	cfg := r.ExecutorConfig()
	if cfg.QueueSize != 16 {
		t.Errorf("QueueSize = %d, want 16", cfg.QueueSize)
	}
	for _, s := range motion.AllSpeeds() {
		if d, ok := cfg.Intervals[s]; !ok || d != 0 {
			t.Errorf("Intervals[%s] = %v (%v), want 0", s, d, ok)
		}
	}

	sc := r.SchedulerConfig()
	if sc.Tick != 20*time.Millisecond || sc.Landing != 0.2 {
		t.Errorf("SchedulerConfig() = %+v", sc)
	}
}

func TestHooks(t *testing.T) {
	r := newRig(t)
	ctx := context.Background()

	normal, _ := r.Request("wave", "test")
	emergency, _ := r.Request("stop", "test")

	if !r.CanRun(ctx, normal) || !r.CanRun(ctx, emergency) {
		t.Error("enabled rig should run everything")
	}

	r.SetEnabled(false)
	if r.CanRun(ctx, normal) {
		t.Error("disabled rig should refuse interruptable requests")
	}
	if !r.CanRun(ctx, emergency) {
		t.Error("disabled rig should still run the stop sequence")
	}
	if err := r.PreExecution(ctx, normal); !errors.Is(err, ErrDisabled) {
		t.Errorf("PreExecution() error = %v, want ErrDisabled", err)
	}
	r.SetEnabled(true)

	if err := r.PostExecution(ctx, normal, executor.OutcomeCompleted); err != nil {
		t.Fatalf("PostExecution() error = %v", err)
	}
	for _, name := range []string{"shoulder", "gripper"} {
		if sim, _ := r.SimServo(name); !sim.Released() {
			t.Errorf("%s not released after PostExecution", name)
		}
	}
	if sim, _ := r.SimStepper("base"); !sim.Released() {
		t.Error("base not released after PostExecution")
	}
	if sim, _ := r.SimServo("head"); sim.Released() {
		t.Error("smooth rotators are not part of sequences")
	}
}

func TestCloseRefusesRequests(t *testing.T) {
	r, err := New(context.Background(), loadConfig(t), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	req, _ := r.Request("wave", "test")

	if err := r.Close(context.Background()); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := r.Close(context.Background()); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if _, err := r.Request("wave", "test"); !errors.Is(err, ErrClosed) {
		t.Errorf("Request() after Close error = %v, want ErrClosed", err)
	}
	if r.CanRun(context.Background(), req) {
		t.Error("CanRun() after Close should be false")
	}
	if sim, _ := r.SimServo("head"); !sim.Released() {
		t.Error("Close() should release smooth rotators")
	}
}

type eventChan chan executor.SequenceEvent

func (c eventChan) Publish(ev executor.SequenceEvent) error {
	c <- ev
	return nil
}

func TestExecutorRunsLibrarySequence(t *testing.T) {
	r := newRig(t)
	events := make(eventChan, 8)

	exec := executor.New(r.ExecutorConfig(), r.Actuators(),
		executor.WithHooks(r),
		executor.WithAbandonHandler(r),
		executor.WithEvents(events),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go exec.Run(ctx) //nolint:errcheck // Stopped by cancel

	req, err := r.Request("hold", "test")
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if _, err := exec.Submit(req); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	select {
	case ev := <-events:
		if ev.Outcome != executor.OutcomeCompleted || ev.SequenceID != "hold" || ev.Ticks != 5 {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for sequence event")
	}

	shoulder, _ := r.Actuator("shoulder")
	if shoulder.Position() != 5 {
		t.Errorf("shoulder = %v, want 5", shoulder.Position())
	}
}
