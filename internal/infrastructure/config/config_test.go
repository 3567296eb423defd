package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const rigYAML = `
rig:
  id: "bench-rig"
  precision: 0.2
database:
  path: "/tmp/test.db"
mqtt:
  enabled: true
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  port: 9000
executor:
  tick_intervals_ms:
    fast: 3
hardware:
  feetech:
    - name: arm-bus
      port: /dev/ttyACM0
triggers: [limit]
actuators:
  - name: base
    kind: stepper
    driver: sim
    stepper:
      steps_per_rotation: 200
  - name: shoulder
    kind: servo
    driver: feetech
    servo: { home: 0, maximum: 180, delta: 1 }
    feetech: { bus: arm-bus, id: 2 }
  - name: gripper
    kind: linear
    driver: sim
    servo: { home: 10, maximum: 80 }
smooth_rotators:
  - name: head
    driver: sim
    home: 0
    maximum: 180
sequences:
  - name: wave
    actions:
      - speed: fast
        moves:
          - { actuator: shoulder, to: 90 }
          - { actuator: gripper, extend: 100 }
      - moves:
          - { actuator: base, forward_until: limit }
  - name: stop
    interruptable: false
    actions:
      - speed: very_fast
        moves:
          - { actuator: shoulder, to: 0 }
scenes:
  - name: nod
    moves:
      - { rotator: head, to: 45, duration_ms: 500 }
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, rigYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Rig.ID != "bench-rig" {
		t.Errorf("Rig.ID = %q, want %q", cfg.Rig.ID, "bench-rig")
	}
	if cfg.Rig.Precision != 0.2 {
		t.Errorf("Rig.Precision = %v, want 0.2", cfg.Rig.Precision)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("API.Port = %d, want 9000", cfg.API.Port)
	}
	if len(cfg.Actuators) != 3 || len(cfg.Sequences) != 2 || len(cfg.Scenes) != 1 {
		t.Fatalf("loaded %d actuators, %d sequences, %d scenes", len(cfg.Actuators), len(cfg.Sequences), len(cfg.Scenes))
	}
	if got := cfg.Actuators[1].Feetech; got.Bus != "arm-bus" || got.ID != 2 {
		t.Errorf("shoulder binding = %+v", got)
	}
	if cfg.Sequences[0].IsInterruptable() != true || cfg.Sequences[1].IsInterruptable() != false {
		t.Error("interruptable flags not loaded")
	}
	if m := cfg.Sequences[0].Actions[0].Moves[1]; m.Extend == nil || *m.Extend != 100 {
		t.Errorf("gripper move = %+v, want extend 100", m)
	}
}

func TestLoad_MergesTickIntervals(t *testing.T) {
	cfg, err := Load(writeConfig(t, rigYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if d, ok := cfg.TickInterval("fast"); !ok || d.Milliseconds() != 3 {
		t.Errorf("fast = %v %v, want 3ms", d, ok)
	}
	if d, ok := cfg.TickInterval("very_slow"); !ok || d.Milliseconds() != 40 {
		t.Errorf("very_slow = %v %v, want default 40ms", d, ok)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	_, err := Load(writeConfig(t, "rig:\n  id: \"\"\n"))
	if err == nil {
		t.Error("Load() expected validation error for empty rig.id, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing rig ID",
			mutate:  func(c *Config) { c.Rig.ID = "" },
			wantErr: "rig.id",
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path",
		},
		{
			name:   "database disabled without path",
			mutate: func(c *Config) { c.Database = DatabaseConfig{} },
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: "api.port",
		},
		{
			name: "auth enabled without secret",
			mutate: func(c *Config) {
				c.API.Auth = APIAuthConfig{Enabled: true, OperatorPasswordHash: "$argon2id$v=19$m=65536,t=3,p=1$c2FsdA$aGFzaA", TokenTTL: 60}
			},
			wantErr: "api.auth.jwt_secret",
		},
		{
			name: "auth enabled with short secret",
			mutate: func(c *Config) {
				c.API.Auth = APIAuthConfig{Enabled: true, JWTSecret: "short", OperatorPasswordHash: "$argon2id$v=19$m=65536,t=3,p=1$c2FsdA$aGFzaA", TokenTTL: 60}
			},
			wantErr: "at least 32 characters",
		},
		{
			name: "auth enabled with plaintext password",
			mutate: func(c *Config) {
				c.API.Auth = APIAuthConfig{Enabled: true, JWTSecret: strings.Repeat("s", 32), OperatorPasswordHash: "hunter2", TokenTTL: 60}
			},
			wantErr: "operator_password_hash",
		},
		{
			name: "auth enabled and complete",
			mutate: func(c *Config) {
				c.API.Auth = APIAuthConfig{Enabled: true, JWTSecret: strings.Repeat("s", 32), OperatorPasswordHash: "$argon2id$v=19$m=65536,t=3,p=1$c2FsdA$aGFzaA", TokenTTL: 60}
			},
		},
		{
			name: "auth ignored when API disabled",
			mutate: func(c *Config) {
				c.API.Enabled = false
				c.API.Auth.Enabled = true
			},
		},
		{
			name:    "unknown speed interval",
			mutate:  func(c *Config) { c.Executor.TickIntervalsMS["ludicrous"] = 1 },
			wantErr: "unknown speed",
		},
		{
			name:    "landing out of range",
			mutate:  func(c *Config) { c.Smooth.Landing = 1.5 },
			wantErr: "smooth.landing",
		},
		{
			name: "stepper without steps",
			mutate: func(c *Config) {
				c.Actuators = []ActuatorConfig{{Name: "base", Kind: KindStepper, Driver: DriverSim}}
			},
			wantErr: "steps_per_rotation",
		},
		{
			name: "servo on unknown bus",
			mutate: func(c *Config) {
				c.Actuators = []ActuatorConfig{{Name: "arm", Kind: KindServo, Driver: DriverFeetech, Feetech: FeetechBinding{Bus: "nope", ID: 1}}}
			},
			wantErr: "unknown feetech bus",
		},
		{
			name: "duplicate actuator",
			mutate: func(c *Config) {
				a := ActuatorConfig{Name: "arm", Kind: KindServo, Driver: DriverSim}
				c.Actuators = []ActuatorConfig{a, a}
			},
			wantErr: "duplicate name",
		},
		{
			name: "move on unknown actuator",
			mutate: func(c *Config) {
				c.Sequences = []SequenceConfig{{Name: "stop", Actions: []ActionConfig{{Moves: []MoveConfig{{Actuator: "ghost", To: f(1)}}}}}}
			},
			wantErr: "unknown actuator",
		},
		{
			name: "move with two targets",
			mutate: func(c *Config) {
				c.Actuators = []ActuatorConfig{{Name: "arm", Kind: KindServo, Driver: DriverSim}}
				c.Sequences = []SequenceConfig{{Name: "stop", Actions: []ActionConfig{{Moves: []MoveConfig{{Actuator: "arm", To: f(1), By: f(2)}}}}}}
			},
			wantErr: "exactly one",
		},
		{
			name: "extend on rotator",
			mutate: func(c *Config) {
				c.Actuators = []ActuatorConfig{{Name: "arm", Kind: KindServo, Driver: DriverSim}}
				c.Sequences = []SequenceConfig{{Name: "stop", Actions: []ActionConfig{{Moves: []MoveConfig{{Actuator: "arm", Extend: f(50)}}}}}}
			},
			wantErr: "extend needs a linear actuator",
		},
		{
			name: "unknown trigger",
			mutate: func(c *Config) {
				c.Actuators = []ActuatorConfig{{Name: "arm", Kind: KindServo, Driver: DriverSim}}
				c.Sequences = []SequenceConfig{{Name: "stop", Actions: []ActionConfig{{Moves: []MoveConfig{{Actuator: "arm", ForwardUntil: "limit"}}}}}}
			},
			wantErr: "unknown trigger",
		},
		{
			name: "stop sequence missing",
			mutate: func(c *Config) {
				c.Sequences = []SequenceConfig{{Name: "wave"}}
			},
			wantErr: "stop_sequence",
		},
		{
			name: "scene on unknown rotator",
			mutate: func(c *Config) {
				c.Scenes = []SceneConfig{{Name: "nod", Moves: []SceneMoveConfig{{Rotator: "head"}}}}
			},
			wantErr: "unknown smooth rotator",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateReportsAllProblems(t *testing.T) {
	cfg := defaultConfig()
	cfg.Rig.ID = ""
	cfg.MQTT.QoS = 9

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want errors")
	}
	for _, want := range []string{"rig.id", "mqtt.qos"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("GRAYMOTION_DATABASE_PATH", "/custom/path.db")
	t.Setenv("GRAYMOTION_MQTT_HOST", "mqtt.example.com")
	t.Setenv("GRAYMOTION_MQTT_USERNAME", "testuser")
	t.Setenv("GRAYMOTION_MQTT_PASSWORD", "testpass")
	t.Setenv("GRAYMOTION_API_HOST", "192.168.1.1")
	t.Setenv("GRAYMOTION_API_PORT", "9191")
	t.Setenv("GRAYMOTION_PANEL_DIR", "/srv/console")
	t.Setenv("GRAYMOTION_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("GRAYMOTION_OPERATOR_PASSWORD_HASH", "$argon2id$test")
	t.Setenv("GRAYMOTION_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("GRAYMOTION_LOG_LEVEL", "debug")

	applyEnvOverrides(cfg)

	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}
	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.MQTT.Auth.Username != "testuser" || cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth = %+v", cfg.MQTT.Auth)
	}
	if cfg.API.Host != "192.168.1.1" || cfg.API.Port != 9191 {
		t.Errorf("API = %s:%d, want 192.168.1.1:9191", cfg.API.Host, cfg.API.Port)
	}
	if cfg.API.Panel.Dir != "/srv/console" {
		t.Errorf("API.Panel.Dir = %q, want /srv/console", cfg.API.Panel.Dir)
	}
	if cfg.API.Auth.JWTSecret != "0123456789abcdef0123456789abcdef" || cfg.API.Auth.OperatorPasswordHash != "$argon2id$test" {
		t.Errorf("API.Auth = %+v", cfg.API.Auth)
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Rig.ID == "" {
		t.Error("defaultConfig should have non-empty Rig.ID")
	}
	if cfg.Rig.Precision != 0.1 {
		t.Errorf("defaultConfig Rig.Precision = %v, want 0.1", cfg.Rig.Precision)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if len(cfg.Executor.TickIntervalsMS) != 5 {
		t.Errorf("defaultConfig has %d tick intervals, want 5", len(cfg.Executor.TickIntervalsMS))
	}
	if cfg.Executor.StopSequence != "stop" {
		t.Errorf("defaultConfig StopSequence = %q, want stop", cfg.Executor.StopSequence)
	}
}
