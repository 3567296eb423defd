package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-motion-core/internal/api"
	"github.com/nerrad567/gray-motion-core/internal/audit"
	"github.com/nerrad567/gray-motion-core/internal/auth"
	mqttbridge "github.com/nerrad567/gray-motion-core/internal/bridges/mqtt"
	"github.com/nerrad567/gray-motion-core/internal/bus"
	"github.com/nerrad567/gray-motion-core/internal/executor"
	"github.com/nerrad567/gray-motion-core/internal/history"
	"github.com/nerrad567/gray-motion-core/internal/infrastructure/config"
	"github.com/nerrad567/gray-motion-core/internal/infrastructure/database"
	"github.com/nerrad567/gray-motion-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-motion-core/internal/infrastructure/logging"
	"github.com/nerrad567/gray-motion-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-motion-core/internal/panel"
	"github.com/nerrad567/gray-motion-core/internal/rig"
	"github.com/nerrad567/gray-motion-core/internal/smooth"
	"github.com/nerrad567/gray-motion-core/internal/telemetry"
	"github.com/nerrad567/gray-motion-core/migrations"
)

const (
	// busBuffer is the per-subscriber buffer on the event bus.
	busBuffer = 64

	// shutdownTimeout bounds the wait for the executor to release actuators.
	shutdownTimeout = 10 * time.Second
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var sim bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the motion control daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if sim {
				return runServeWith(cmd.Context(), opts, simulate)
			}
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&sim, "sim", false, "bind every actuator to the simulated driver")

	return cmd
}

func runServe(ctx context.Context, opts *rootOptions) error {
	return runServeWith(ctx, opts, nil)
}

// runServeWith is the daemon. Deferred Close() calls run in reverse order,
// so the executor releases actuators before buses and connections go away.
func runServeWith(ctx context.Context, opts *rootOptions, adjust func(*config.Config)) error { //nolint:gocognit,gocyclo // Bootstrap: linear wiring of optional subsystems
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Motion Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, log, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if adjust != nil {
		adjust(cfg)
	}
	log.Info("configuration loaded",
		"path", opts.ConfigPath,
		"rig", cfg.Rig.ID,
		"actuators", len(cfg.Actuators),
		"sequences", len(cfg.Sequences),
	)

	// Build the rig: hardware buses, actuators, triggers, library.
	r, err := rig.New(ctx, cfg, log.Component("rig"))
	if err != nil {
		return fmt.Errorf("building rig: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if closeErr := r.Close(closeCtx); closeErr != nil {
			log.Error("error closing rig", "error", closeErr)
		}
	}()

	reg := bus.NewRegistry(busBuffer, log.Component("bus"))
	defer reg.Close()

	events, err := bus.Get(reg, executor.EventsKey)
	if err != nil {
		return fmt.Errorf("creating event topic: %w", err)
	}

	// Open database (optional)
	var db *database.DB
	var runs history.Repository
	var trail audit.Repository
	if cfg.Database.Enabled {
		db, err = openDatabase(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()

		repo := history.NewSQLiteRepository(db.DB)
		recorder := history.NewRecorder(repo, log.Component("history"))
		if err := recorder.Start(reg); err != nil {
			return fmt.Errorf("starting run history: %w", err)
		}
		defer recorder.Stop()
		runs = repo
		trail = audit.NewSQLiteRepository(db.DB)
	} else {
		log.Info("database disabled, run history and command audit not recorded")
	}

	// Connect to InfluxDB (optional)
	var hooks executor.Hooks = r
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		metrics := telemetry.NewRecorder(r.ID(), influxClient)
		if err := metrics.Start(reg); err != nil {
			return fmt.Errorf("starting telemetry: %w", err)
		}
		defer metrics.Stop()
		hooks = telemetry.WrapHooks(r, r.ID(), influxClient)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start the executor and smooth scheduler.
	exec := executor.New(r.ExecutorConfig(), r.Actuators(),
		executor.WithHooks(hooks),
		executor.WithAbandonHandler(r),
		executor.WithEvents(events),
		executor.WithLogger(log.Component("executor")),
	)
	go func() {
		if runErr := exec.Run(ctx); runErr != nil {
			log.Error("executor stopped", "error", runErr)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if shutdownErr := exec.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error("error stopping executor", "error", shutdownErr)
		}
	}()

	sched := smooth.NewScheduler(r.SchedulerConfig(), log.Component("smooth"))
	go func() {
		if runErr := sched.Run(ctx); runErr != nil {
			log.Error("smooth scheduler stopped", "error", runErr)
		}
	}()

	ctrl := rig.NewController(r, exec, sched, reg)
	defer ctrl.Wait()

	// Every transport sends commands through the same (audited) controller.
	var commands audit.Commander = ctrl
	if trail != nil {
		commands = audit.WrapController(ctrl, trail, log.Component("audit"))
	}

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT, log.Component("mqtt"))
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		bridge, err := mqttbridge.NewBridge(mqttbridge.Options{
			Client:     mqttClient,
			Controller: commands,
			Registry:   reg,
			Logger:     log.Component("mqtt-bridge"),
		})
		if err != nil {
			return fmt.Errorf("creating MQTT bridge: %w", err)
		}
		if err := bridge.Start(ctx); err != nil {
			return fmt.Errorf("starting MQTT bridge: %w", err)
		}
		defer bridge.Stop()
	} else {
		log.Info("MQTT disabled")
	}

	// Start the HTTP API (optional)
	if cfg.API.Enabled {
		deps := api.Deps{
			Config:     cfg.API,
			WS:         cfg.WebSocket,
			Logger:     log.Component("api"),
			Controller: commands,
			Library:    r,
			History:    runs,
			Audit:      trail,
			Events:     reg,
			DB:         db,
			Version:    version,
		}
		if mqttClient != nil {
			deps.MQTT = mqttClient
		}
		if cfg.API.Panel.Enabled {
			deps.Panel = panel.Handler(cfg.API.Panel.Dir)
		}
		if cfg.API.Auth.Enabled {
			authenticator, err := auth.New(r.ID(), cfg.API.Auth)
			if err != nil {
				return fmt.Errorf("configuring operator auth: %w", err)
			}
			deps.Auth = authenticator
		} else {
			log.Warn("operator auth disabled, API commands are unauthenticated")
		}
		srv, err := api.New(deps)
		if err != nil {
			return fmt.Errorf("creating API server: %w", err)
		}
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("starting API server: %w", err)
		}
		defer func() {
			if closeErr := srv.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("HTTP API disabled")
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	return nil
}

// openDatabase opens SQLite and applies the embedded migrations.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, log *logging.Logger) (*database.DB, error) {
	db, err := database.Open(database.Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	log.Info("database connected", "path", cfg.Path)

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database migrations complete")
	return db, nil
}

// healthCheck verifies every enabled infrastructure connection.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
