// Gray Motion Core - Motion Control Daemon
//
// This is the main entry point for the Gray Motion Core application.
// It drives a rig of servos, steppers and servo-backed linear actuators
// through declarative sequences and smooth scenes, taking commands from
// MQTT and a local HTTP API.
//
// Subcommands:
//   - serve (default): run the daemon
//   - check: validate configuration and the sequence library
//   - run <sequence>: run one sequence and exit with its outcome
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

func main() {
	// Cancel on Ctrl+C or SIGTERM so every subcommand shuts down cleanly.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
