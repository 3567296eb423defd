// Package config handles loading and validating Gray Motion Core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields and rig consistency
//   - Default value handling
//
// The rig itself (actuators, smooth rotators, triggers, sequences and
// scenes) is declared in the same file. Validate checks that every move
// references a declared actuator and trigger, so `graymotion check` can
// report a broken library before any hardware is touched.
//
// Security Considerations:
//   - Sensitive values (MQTT password, InfluxDB token, JWT secret, operator
//     password hash) should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Rig.Name)
package config
