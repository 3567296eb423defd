package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Gray Motion Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Rig       RigConfig       `yaml:"rig"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Hardware  HardwareConfig  `yaml:"hardware"`
	Executor  ExecutorConfig  `yaml:"executor"`
	Smooth    SmoothConfig    `yaml:"smooth"`

	Actuators      []ActuatorConfig      `yaml:"actuators"`
	SmoothRotators []SmoothRotatorConfig `yaml:"smooth_rotators"`
	Triggers       []string              `yaml:"triggers"`
	Sequences      []SequenceConfig      `yaml:"sequences"`
	Scenes         []SceneConfig         `yaml:"scenes"`
}

// RigConfig identifies the rig and its global motion tolerances.
type RigConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	// Precision is the fuzzy-equality tolerance (degrees) used by servos
	// that do not set their own.
	Precision float64 `yaml:"precision"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
	Panel    PanelConfig      `yaml:"panel"`
	Auth     APIAuthConfig    `yaml:"auth"`
}

// APIAuthConfig protects the command endpoints with an operator login.
// Read-only endpoints and the event WebSocket stay open.
type APIAuthConfig struct {
	Enabled bool `yaml:"enabled"`

	// JWTSecret signs operator tokens (HS256). At least 32 characters.
	JWTSecret string `yaml:"jwt_secret"`

	// OperatorPasswordHash is an Argon2id PHC string, as printed by
	// `graymotion hash-password`.
	OperatorPasswordHash string `yaml:"operator_password_hash"`

	// TokenTTL is the operator token lifetime in minutes.
	TokenTTL int `yaml:"token_ttl"`
}

// PanelConfig controls the operator console served under /panel/.
type PanelConfig struct {
	Enabled bool `yaml:"enabled"`

	// Dir serves console assets from disk instead of the embedded copy.
	Dir string `yaml:"dir"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// HardwareConfig declares the buses drivers attach to.
type HardwareConfig struct {
	Feetech []FeetechBusConfig `yaml:"feetech"`
}

// FeetechBusConfig describes one feetech STS serial bus.
type FeetechBusConfig struct {
	Name      string `yaml:"name"`
	Port      string `yaml:"port"`
	BaudRate  int    `yaml:"baud_rate"`
	TimeoutMS int    `yaml:"timeout_ms"`
	ScanFrom  int    `yaml:"scan_from"`
	ScanTo    int    `yaml:"scan_to"`
}

// ExecutorConfig tunes the sequence executor.
type ExecutorConfig struct {
	QueueSize int `yaml:"queue_size"`

	// TickIntervalsMS maps speed names (very_slow .. very_fast) to the pause
	// between ticks in milliseconds.
	TickIntervalsMS map[string]int `yaml:"tick_intervals_ms"`

	// StopSequence names the sequence run as the emergency stop.
	StopSequence string `yaml:"stop_sequence"`
}

// SmoothConfig tunes the time-driven smooth rotator scheduler.
type SmoothConfig struct {
	TickMS  int     `yaml:"tick_ms"`
	Landing float64 `yaml:"landing"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GRAYMOTION_SECTION_KEY
// For example: GRAYMOTION_DATABASE_PATH, GRAYMOTION_API_PORT
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Rig: RigConfig{
			ID:        "rig-001",
			Name:      "Gray Motion",
			Precision: 0.1,
		},
		Database: DatabaseConfig{
			Enabled:     true,
			Path:        "./data/graymotion.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "graymotion-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		API: APIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
			Panel: PanelConfig{Enabled: true},
			Auth:  APIAuthConfig{TokenTTL: 60},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Executor: ExecutorConfig{
			QueueSize: 16,
			TickIntervalsMS: map[string]int{
				"very_slow": 40,
				"slow":      20,
				"normal":    10,
				"fast":      5,
				"very_fast": 2,
			},
			StopSequence: "stop",
		},
		Smooth: SmoothConfig{
			TickMS:  20,
			Landing: 0.2,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GRAYMOTION_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("GRAYMOTION_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("GRAYMOTION_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GRAYMOTION_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GRAYMOTION_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("GRAYMOTION_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("GRAYMOTION_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	if v := os.Getenv("GRAYMOTION_PANEL_DIR"); v != "" {
		cfg.API.Panel.Dir = v
	}

	// Operator auth (IMPORTANT: keep the secret out of the config file)
	if v := os.Getenv("GRAYMOTION_JWT_SECRET"); v != "" {
		cfg.API.Auth.JWTSecret = v
	}
	if v := os.Getenv("GRAYMOTION_OPERATOR_PASSWORD_HASH"); v != "" {
		cfg.API.Auth.OperatorPasswordHash = v
	}

	// InfluxDB
	if v := os.Getenv("GRAYMOTION_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("GRAYMOTION_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// All problems are collected and reported together so a single `check`
// run shows everything that needs fixing.
func (c *Config) Validate() error {
	var errs []string

	if c.Rig.ID == "" {
		errs = append(errs, "rig.id is required")
	}
	if c.Rig.Precision < 0 {
		errs = append(errs, "rig.precision must not be negative")
	}

	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.API.Enabled && c.API.Auth.Enabled {
		errs = append(errs, c.validateAuth()...)
	}

	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url and influxdb.bucket are required when enabled")
	}

	if c.Executor.QueueSize < 1 {
		errs = append(errs, "executor.queue_size must be at least 1")
	}
	for name, ms := range c.Executor.TickIntervalsMS {
		if !validSpeed(name) {
			errs = append(errs, fmt.Sprintf("executor.tick_intervals_ms: unknown speed %q", name))
		}
		if ms < 0 {
			errs = append(errs, fmt.Sprintf("executor.tick_intervals_ms.%s must not be negative", name))
		}
	}

	if c.Smooth.TickMS < 1 {
		errs = append(errs, "smooth.tick_ms must be at least 1")
	}
	if c.Smooth.Landing < 0 || c.Smooth.Landing > 1 {
		errs = append(errs, "smooth.landing must be between 0 and 1")
	}

	errs = append(errs, c.validateRig()...)

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// minJWTSecretLength is the shortest accepted HS256 signing secret.
const minJWTSecretLength = 32

func (c *Config) validateAuth() []string {
	var errs []string
	a := c.API.Auth
	if a.JWTSecret == "" {
		errs = append(errs, "api.auth.jwt_secret is required (set GRAYMOTION_JWT_SECRET environment variable)")
	} else if len(a.JWTSecret) < minJWTSecretLength {
		errs = append(errs, fmt.Sprintf("api.auth.jwt_secret must be at least %d characters", minJWTSecretLength))
	}
	if !strings.HasPrefix(a.OperatorPasswordHash, "$argon2id$") {
		errs = append(errs, "api.auth.operator_password_hash must be an argon2id hash (see graymotion hash-password)")
	}
	if a.TokenTTL < 1 {
		errs = append(errs, "api.auth.token_ttl must be at least 1 minute")
	}
	return errs
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// TickInterval returns the configured pause for a speed name.
func (c *Config) TickInterval(speed string) (time.Duration, bool) {
	ms, ok := c.Executor.TickIntervalsMS[speed]
	return time.Duration(ms) * time.Millisecond, ok
}
