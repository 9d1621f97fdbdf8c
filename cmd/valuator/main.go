package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OldStager01/housing-valuator/api"
	"github.com/OldStager01/housing-valuator/api/handlers"
	"github.com/OldStager01/housing-valuator/internal/cache"
	"github.com/OldStager01/housing-valuator/internal/logger"
	"github.com/OldStager01/housing-valuator/internal/metrics"
	"github.com/OldStager01/housing-valuator/internal/orchestrator"
	"github.com/OldStager01/housing-valuator/pkg/config"
	"github.com/OldStager01/housing-valuator/pkg/database"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	trainIfMissing := flag.Bool("train-if-missing", false, "train a model when no artifacts can be loaded")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Mode)

	opts := orchestrator.Options{}
	checks := map[string]handlers.Check{}

	if cfg.Database.Enabled {
		db, err := database.New(cfg.Database.ToDBConfig())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		logger.Info("Database connection established")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.MigrationTimeout)
		err = database.NewMigrator(db).Run(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		if *migrate {
			logger.Info("Migrations completed successfully")
			return nil
		}

		opts.DB = db
		checks["database"] = db.HealthCheck
	} else if *migrate {
		return errors.New("database.enabled is false, nothing to migrate")
	}

	if cfg.Cache.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		c, err := cache.Connect(ctx, orchestrator.CacheConfig(cfg))
		cancel()
		if err != nil {
			// The cache is an optimisation; serve without it.
			logger.Warnf("Prediction cache disabled: %v", err)
		} else {
			defer c.Close()
			opts.Cache = c
			checks["cache"] = c.Ping
		}
	}

	if cfg.Prometheus.Enabled {
		opts.Metrics = metrics.Get()
		if opts.DB != nil {
			if err := opts.Metrics.WatchDB(opts.DB.DB, cfg.Database.Name); err != nil {
				logger.Warnf("Database pool metrics disabled: %v", err)
			}
		}
	}

	orch := orchestrator.New(cfg, opts)
	if err := orch.Start(); err != nil {
		return fmt.Errorf("failed to start orchestrator: %w", err)
	}
	defer orch.Stop()

	loadCtx, loadCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := orch.LoadArtifacts(loadCtx); err != nil {
		if *trainIfMissing {
			logger.Warnf("No usable artifacts (%v), training a new model", err)
			if _, err := orch.Train(loadCtx); err != nil {
				logger.Errorf("Training failed, serving without a model: %v", err)
			}
		} else {
			logger.Errorf("Serving without a model: %v", err)
		}
	}
	loadCancel()

	deps := api.Dependencies{
		Predictor: orch.Predictor(),
		Source:    orch,
		Preparer:  orch.Preparer(),
		Metrics:   opts.Metrics,
		Checks:    checks,
		Project:   cfg.Project,
		Settings:  cfg,
	}
	if store := orch.Store(); store != nil {
		deps.History = store.Predictions
	}

	server := api.NewServer(cfg.API, cfg.Prometheus, cfg.App.Mode, deps)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on port %d", cfg.API.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}
