package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/gray-motion-core/internal/auth"
	"github.com/nerrad567/gray-motion-core/internal/executor"
	"github.com/nerrad567/gray-motion-core/internal/history"
	"github.com/nerrad567/gray-motion-core/internal/infrastructure/database"
)

const testConfig = `
rig:
  id: cli-test
  name: CLI Test Rig
database:
  enabled: true
  path: %DB%
mqtt:
  enabled: false
api:
  enabled: false
influxdb:
  enabled: false
logging:
  level: error
  format: text
  output: stderr
executor:
  tick_intervals_ms: { very_slow: 0, slow: 0, normal: 0, fast: 0, very_fast: 0 }
actuators:
  - name: shoulder
    kind: servo
    driver: feetech
    feetech: { bus: arm, id: 1 }
    servo: { home: 0, maximum: 180, delta: 1 }
hardware:
  feetech:
    - { name: arm, port: /dev/ttyUSB-missing, baud_rate: 1000000 }
smooth_rotators:
  - { name: head, driver: sim, home: 0, maximum: 180 }
sequences:
  - name: nudge
    actions:
      - moves: [{ actuator: shoulder, by: 3 }]
  - name: stop
    actions:
      - moves: [{ actuator: shoulder, to: 0 }]
scenes:
  - name: nod
    moves: [{ rotator: head, to: 30, duration_ms: 100 }]
`

// writeConfig writes the test configuration and returns its path and the
// database path it uses.
func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "graymotion.db")
	path := filepath.Join(dir, "config.yaml")
	content := strings.ReplaceAll(testConfig, "%DB%", dbPath)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path, dbPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("GRAYMOTION_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	t.Setenv("GRAYMOTION_CONFIG", "/etc/graymotion/config.yaml")
	if got := getConfigPath(); got != "/etc/graymotion/config.yaml" {
		t.Errorf("getConfigPath() = %q, want env value", got)
	}
}

func TestInvalidConfigPath(t *testing.T) {
	for _, sub := range []string{"serve", "check", "run", "migrate status"} {
		t.Run(sub, func(t *testing.T) {
			args := append(strings.Fields(sub), "--config", "/nonexistent/path/config.yaml")
			if sub == "run" {
				args = append(args, "nudge")
			}
			if _, err := execute(t, args...); err == nil {
				t.Fatalf("%s should fail with invalid config path", sub)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	path, _ := writeConfig(t)

	out, err := execute(t, "check", "--config", path)
	if err != nil {
		t.Fatalf("check error: %v\n%s", err, out)
	}
	for _, want := range []string{"rig cli-test", "sequence nudge", "[stop]", "scene    nod", "configuration OK"} {
		if !strings.Contains(out, want) {
			t.Errorf("check output missing %q:\n%s", want, out)
		}
	}
}

func TestRunSimulated(t *testing.T) {
	path, dbPath := writeConfig(t)

	out, err := execute(t, "run", "nudge", "--sim", "--config", path, "--source", "test")
	if err != nil {
		t.Fatalf("run error: %v\n%s", err, out)
	}

	var ev executor.SequenceEvent
	if err := json.Unmarshal([]byte(out), &ev); err != nil {
		t.Fatalf("unmarshal %q: %v", out, err)
	}
	if ev.SequenceID != "nudge" || ev.Outcome != executor.OutcomeCompleted || ev.Ticks != 3 || ev.Source != "test" {
		t.Errorf("event = %+v", ev)
	}

	db, err := database.Open(database.Config{Path: dbPath})
	if err != nil {
		t.Fatalf("database.Open() error: %v", err)
	}
	defer db.Close()
	runs, err := history.NewSQLiteRepository(db.DB).ListRuns(context.Background(), "nudge", 0)
	if err != nil {
		t.Fatalf("ListRuns() error: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != ev.RunID {
		t.Errorf("recorded runs = %+v", runs)
	}
}

func TestRunUnknownSequence(t *testing.T) {
	path, _ := writeConfig(t)
	if _, err := execute(t, "run", "wave", "--sim", "--config", path); err == nil {
		t.Fatal("run of unknown sequence should fail")
	}
}

func TestServeSimulated(t *testing.T) {
	path, _ := writeConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runServeWith(ctx, &rootOptions{ConfigPath: path}, simulate)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not shut down")
	}
}

func TestHashPassword(t *testing.T) {
	var out bytes.Buffer
	if err := runHashPassword(strings.NewReader("s3cret\n"), &out); err != nil {
		t.Fatalf("runHashPassword() error = %v", err)
	}

	hash := strings.TrimSpace(out.String())
	ok, err := auth.VerifyPassword("s3cret", hash)
	if err != nil || !ok {
		t.Errorf("VerifyPassword(printed hash) = %v, %v; want true", ok, err)
	}

	if err := runHashPassword(strings.NewReader(""), &out); err == nil {
		t.Error("runHashPassword(empty stdin) error = nil, want error")
	}
}

func TestMigrate(t *testing.T) {
	path, _ := writeConfig(t)

	steps := []struct {
		args    []string
		applied int
		pending string
	}{
		{[]string{"migrate", "status"}, 0, "20260301_090000"},
		{[]string{"migrate", "up"}, 2, ""},
		{[]string{"migrate", "down"}, 1, "20260301_091000  command_audit"},
		{[]string{"migrate", "down"}, 0, "20260301_090000  sequence_runs"},
		{[]string{"migrate", "down"}, 0, "20260301_091000"},
		{[]string{"migrate", "up"}, 2, ""},
	}
	for i, step := range steps {
		out, err := execute(t, append(step.args, "--config", path)...)
		if err != nil {
			t.Fatalf("step %d %v error: %v\n%s", i, step.args, err, out)
		}
		if got := strings.Count(out, "applied  "); got != step.applied {
			t.Errorf("step %d %v: applied = %d, want %d\n%s", i, step.args, got, step.applied, out)
		}
		if step.pending != "" && !strings.Contains(out, "pending  "+step.pending) {
			t.Errorf("step %d %v: output missing pending %q\n%s", i, step.args, step.pending, out)
		}
	}
}
