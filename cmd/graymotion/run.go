package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-motion-core/internal/executor"
	"github.com/nerrad567/gray-motion-core/internal/history"
	"github.com/nerrad567/gray-motion-core/internal/infrastructure/config"
	"github.com/nerrad567/gray-motion-core/internal/infrastructure/logging"
	"github.com/nerrad567/gray-motion-core/internal/rig"
)

type runOptions struct {
	Sim    bool
	Source string
}

func newRunCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <sequence>",
		Short: "Run one library sequence and exit with its outcome",
		Long: `Run one library sequence against the configured hardware, print the
resulting lifecycle event as JSON and exit non-zero unless it completed.
The run is recorded in the history database when it is enabled.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSequence(cmd.Context(), rootOpts, opts, args[0], cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&opts.Sim, "sim", false, "bind every actuator to the simulated driver")
	cmd.Flags().StringVar(&opts.Source, "source", "cli", "source recorded with the run")

	return cmd
}

// eventSink collects executor events.
type eventSink chan executor.SequenceEvent

func (s eventSink) Publish(ev executor.SequenceEvent) error {
	s <- ev
	return nil
}

func runSequence(ctx context.Context, rootOpts *rootOptions, opts *runOptions, name string, out io.Writer) error {
	cfg, log, err := loadConfig(rootOpts)
	if err != nil {
		return err
	}
	if opts.Sim {
		simulate(cfg)
	}

	r, err := rig.New(ctx, cfg, log.Component("rig"))
	if err != nil {
		return fmt.Errorf("building rig: %w", err)
	}
	defer func() {
		if closeErr := r.Close(context.Background()); closeErr != nil {
			log.Error("error closing rig", "error", closeErr)
		}
	}()

	req, err := r.Request(name, opts.Source)
	if err != nil {
		return err
	}

	events := make(eventSink, 1)
	exec := executor.New(r.ExecutorConfig(), r.Actuators(),
		executor.WithHooks(r),
		executor.WithEvents(events),
		executor.WithLogger(log.Component("executor")),
	)
	go exec.Run(ctx) //nolint:errcheck // Stopped by Shutdown below
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if shutdownErr := exec.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error("error stopping executor", "error", shutdownErr)
		}
	}()

	if _, err := exec.Submit(req); err != nil {
		return fmt.Errorf("submitting %q: %w", name, err)
	}

	var ev executor.SequenceEvent
	select {
	case ev = <-events:
	case <-ctx.Done():
		return fmt.Errorf("run %q: %w", name, ctx.Err())
	}

	if err := recordRun(ctx, cfg, log, ev); err != nil {
		log.Warn("run not recorded", "error", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ev); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}

	if ev.Outcome != executor.OutcomeCompleted {
		return fmt.Errorf("sequence %q %s", name, ev.Outcome)
	}
	return nil
}

// recordRun writes the run to the history database when it is enabled.
func recordRun(ctx context.Context, cfg *config.Config, log *logging.Logger, ev executor.SequenceEvent) error {
	if !cfg.Database.Enabled {
		return nil
	}
	db, err := openDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	return history.NewSQLiteRepository(db.DB).Record(ctx, history.RunFromEvent(ev))
}
