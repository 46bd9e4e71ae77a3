// SBS Travel Core - Airport Transfer Platform
//
// This is the main entry point for the SBS Travel Core auth service.
// It owns account credentials, role permissions and the session
// lifecycle for the booking platform's three tiers (admin, driver,
// customer), and exposes them over a REST API. Auth activity can
// optionally be announced over MQTT and recorded in InfluxDB.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/luckdow/sbstravel-sub000/migrations"

	"github.com/luckdow/sbstravel-sub000/internal/announce"
	"github.com/luckdow/sbstravel-sub000/internal/api"
	"github.com/luckdow/sbstravel-sub000/internal/audit"
	"github.com/luckdow/sbstravel-sub000/internal/auth"
	"github.com/luckdow/sbstravel-sub000/internal/infrastructure/config"
	"github.com/luckdow/sbstravel-sub000/internal/infrastructure/database"
	"github.com/luckdow/sbstravel-sub000/internal/infrastructure/influxdb"
	"github.com/luckdow/sbstravel-sub000/internal/infrastructure/logging"
	"github.com/luckdow/sbstravel-sub000/internal/infrastructure/mqtt"
	"github.com/luckdow/sbstravel-sub000/internal/metrics"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting SBS Travel Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories
	userRepo := auth.NewUserRepository(db.DB)
	resetRepo := auth.NewResetTokenRepository(db.DB)
	snapshotRepo := auth.NewSnapshotRepository(db.DB)
	auditRepo := audit.NewSQLiteRepository(db.DB, log)

	// The audit trail always records; MQTT announcements and InfluxDB
	// metrics join the fan-out when their integrations are enabled.
	recorders := auth.AuditRecorders{auditRepo}

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	var announcer *announce.Announcer
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		announcer = announce.New(mqttClient, log)
		recorders = append(recorders, announcer)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	var metricsRecorder *metrics.Recorder
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
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})

		metricsRecorder = metrics.New(influxClient)
		recorders = append(recorders, metricsRecorder)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Auth service
	svc, err := auth.NewService(auth.ServiceConfig{
		SessionTTL:        cfg.GetSessionTTL(),
		RememberMeTTL:     cfg.GetRememberMeTTL(),
		ResetTokenTTL:     cfg.GetResetTokenTTL(),
		MinPasswordLength: cfg.Auth.MinPasswordLength,
	}, auth.ServiceDeps{
		Users:     userRepo,
		Resets:    resetRepo,
		Snapshots: snapshotRepo,
		Audit:     recorders,
		Notifier:  auth.NewLogNotifier(log),
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("creating auth service: %w", err)
	}
	defer svc.Wait()

	if announcer != nil {
		stop := announcer.Start(svc)
		defer stop()
	}
	if metricsRecorder != nil {
		stop := metricsRecorder.Start(svc)
		defer stop()
	}

	// Seed the first admin account on an empty directory
	seedPassword, err := auth.SeedAdmin(ctx, userRepo, cfg.Auth.SeedAdminEmail, log)
	if err != nil {
		return fmt.Errorf("seeding admin account: %w", err)
	}
	if seedPassword != "" {
		log.Warn("admin account seeded, change the password immediately",
			"email", cfg.Auth.SeedAdminEmail,
			"password", seedPassword,
		)
	}

	// Restore any persisted session from before the last shutdown
	if restoreErr := svc.Restore(ctx); restoreErr != nil {
		return fmt.Errorf("restoring session state: %w", restoreErr)
	}
	log.Info("session state restored")

	// Session expiry monitor
	monitor := auth.NewMonitor(svc, cfg.GetMonitorInterval(), log)
	go monitor.Run(ctx)
	log.Info("session monitor started", "interval", cfg.GetMonitorInterval())

	// REST API
	apiServer, err := api.New(api.Deps{
		Config:  cfg.API,
		Logger:  log,
		Auth:    svc,
		Users:   userRepo,
		Audit:   auditRepo,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("SBS Travel Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SBSTRAVEL_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SBSTRAVEL_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// The MQTT and InfluxDB clients may be nil when their integrations are
// disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
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
