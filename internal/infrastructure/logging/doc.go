// Package logging provides structured logging for Gray Motion Core.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting service", "rig", cfg.Rig.ID)
//	logger.Error("failed to connect", "error", err)
//
// Domain packages declare their own four-method Logger interface;
// *Logger satisfies all of them:
//
//	exec := executor.New(cfg, actuators, executor.WithLogger(logger.Component("executor")))
//
// # Security
//
// Never log secrets, tokens or passwords. The MQTT password and InfluxDB
// token come from the environment and are never included in log fields.
package logging
