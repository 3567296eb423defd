package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-motion-core/internal/infrastructure/config"
	"github.com/nerrad567/gray-motion-core/internal/infrastructure/logging"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// rootOptions holds global flags for all commands.
type rootOptions struct {
	ConfigPath string
}

// newRootCommand creates the graymotion command tree. Without a subcommand
// it runs the daemon.
func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "graymotion",
		Short:         "Gray Motion Core - motion control daemon",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", getConfigPath(),
		"configuration file (env GRAYMOTION_CONFIG)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newCheckCommand(opts))
	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newHashPasswordCommand())

	return cmd
}

// getConfigPath returns the configuration file path.
// Uses GRAYMOTION_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYMOTION_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// loadConfig reads the configuration and builds the configured logger.
func loadConfig(opts *rootOptions) (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, logging.New(cfg.Logging, version), nil
}

// simulate rebinds every actuator and smooth rotator to the simulated
// driver so a configuration can be exercised without hardware.
func simulate(cfg *config.Config) {
	for i := range cfg.Actuators {
		cfg.Actuators[i].Driver = config.DriverSim
	}
	for i := range cfg.SmoothRotators {
		cfg.SmoothRotators[i].Driver = config.DriverSim
	}
}
