package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-motion-core/internal/infrastructure/config"
	"github.com/nerrad567/gray-motion-core/internal/rig"
)

func newCheckCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and the sequence library",
		Long: `Load and validate the configuration, then build every sequence and
scene against simulated drivers. No hardware is touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
}

func runCheck(ctx context.Context, opts *rootOptions, out io.Writer) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	simulate(cfg)

	r, err := rig.New(ctx, cfg, nil)
	if err != nil {
		return fmt.Errorf("building rig: %w", err)
	}
	defer r.Close(context.Background()) //nolint:errcheck // Simulated drivers only

	fmt.Fprintf(out, "rig %s (%s): %d actuators, %d smooth rotators, %d triggers\n",
		r.ID(), r.Name(), len(r.Actuators()), len(r.Rotators()), len(r.Triggers().Names()))

	for _, info := range r.Sequences() {
		seq, err := r.Sequence(info.Name)
		if err != nil {
			return fmt.Errorf("sequence %q: %w", info.Name, err)
		}
		flags := ""
		if info.Stop {
			flags = " [stop]"
		} else if !info.Interruptable {
			flags = " [non-interruptable]"
		}
		fmt.Fprintf(out, "  sequence %-20s %d actions%s\n", info.Name, seq.Len(), flags)
	}
	for _, name := range r.SceneNames() {
		moves, err := r.Scene(name)
		if err != nil {
			return fmt.Errorf("scene %q: %w", name, err)
		}
		fmt.Fprintf(out, "  scene    %-20s %d moves\n", name, len(moves))
	}

	fmt.Fprintln(out, "configuration OK")
	return nil
}
