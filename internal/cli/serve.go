package cli

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os/signal"
	"syscall"

	"filling_line/internal/config"
	"filling_line/internal/handlers"
	"filling_line/internal/influxdb"
	"filling_line/internal/logger"
	"filling_line/internal/machine"
	"filling_line/internal/models"
	"filling_line/internal/repository"
	"filling_line/internal/repository/db"
	"filling_line/internal/server"
	"filling_line/internal/service"
	"filling_line/internal/tags"

	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the simulator and its HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootOpts.ConfigDir)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runServe(ctx, cfg)
		},
	}
}

func runServe(ctx context.Context, cfg config.Config) error {
	log := logger.Get(cfg.Log.Level)

	conn, err := openDB(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := machine.New(machineOptions(cfg)...)

	publishers, closeInflux, err := openPublishers(ctx, cfg, m.Snapshot().Identity, log)
	if err != nil {
		return err
	}
	defer closeInflux()

	services := service.NewService(repository.NewRepository(conn), m, service.Options{
		Log:            log,
		Publishers:     publishers,
		EventRetention: cfg.Events.Retention,
	})

	if cfg.Simulation.RestoreState {
		if err := services.Simulator.Restore(ctx); err != nil {
			log.Warnw("state restore failed; starting from defaults", "err", err)
		}
	}

	go services.Simulator.Run(ctx, cfg.Simulation.Tick)

	srv := server.New(cfg.Port, handlers.NewHandler(services, log, cfg.CORS.AllowedOrigins...).InitRoutes())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()
	log.Infow("server started", "addr", srv.Addr(), "tick", cfg.Simulation.Tick)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Infow("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// openDB initializes the SQLite database using configuration.
func openDB(cfg config.Config, log *logger.Logger) (*sql.DB, error) {
	path := cfg.DB.Path
	if path == "" {
		path = "filling_line.db"
		log.Infow("db.path not set in config; using default file", "default", path)
	}
	conn, err := db.InitDB(path)
	if err != nil {
		return nil, fmt.Errorf("init sqlite: %w", err)
	}
	return conn, nil
}

func machineOptions(cfg config.Config) []machine.Option {
	opts := []machine.Option{
		machine.WithTankFloor(cfg.Simulation.TankFloor),
		machine.WithBottlesPerTick(cfg.Simulation.BottlesPerTick),
		machine.WithShelfLife(cfg.Simulation.ShelfLifeDays),
		machine.WithIdentity(models.Identity{
			Name:              cfg.Machine.Name,
			SerialNumber:      cfg.Machine.SerialNumber,
			Plant:             cfg.Machine.Plant,
			ProductionSegment: cfg.Machine.ProductionSegment,
			ProductionLine:    cfg.Machine.ProductionLine,
		}),
	}
	if cfg.Simulation.Seed != 0 {
		opts = append(opts, machine.WithRandom(rand.New(rand.NewSource(cfg.Simulation.Seed))))
	}
	return opts
}

// openPublishers connects the optional InfluxDB sink. The returned close
// function is always safe to call.
func openPublishers(ctx context.Context, cfg config.Config, id models.Identity, log *logger.Logger) ([]tags.Publisher, func(), error) {
	if !cfg.Influx.Enabled {
		return nil, func() {}, nil
	}
	client, err := influxdb.New(ctx, influxdb.Config{
		URL:     cfg.Influx.URL,
		Token:   cfg.Influx.Token,
		Org:     cfg.Influx.Org,
		Bucket:  cfg.Influx.Bucket,
		Timeout: cfg.Influx.Timeout,
	})
	if err != nil {
		return nil, func() {}, fmt.Errorf("connect influxdb: %w", err)
	}
	log.Infow("influxdb connected", "url", cfg.Influx.URL, "bucket", cfg.Influx.Bucket)
	pub := influxdb.NewPublisher(client.WriteAPI(), cfg.Influx.Measurement, id)
	return []tags.Publisher{pub}, client.Close, nil
}
