package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/OldStager01/housing-valuator/internal/logger"
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
	rawData := flag.String("data", "", "raw listings CSV (overrides data.raw_data)")
	artifactDir := flag.String("out", "", "artifact directory (overrides data.artifact_dir)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *rawData != "" {
		cfg.Data.RawData = *rawData
	}
	if *artifactDir != "" {
		cfg.Data.ArtifactDir = *artifactDir
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := orchestrator.Options{}
	if cfg.Database.Enabled {
		db, err := database.New(cfg.Database.ToDBConfig())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		if err := database.NewMigrator(db).Run(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		opts.DB = db
	}

	orch := orchestrator.New(cfg, opts)
	if err := orch.Start(); err != nil {
		return fmt.Errorf("failed to start orchestrator: %w", err)
	}
	// Stop drains the event logger, so the run is persisted before exit.
	defer orch.Stop()

	logger.Infof("Training on %s", cfg.Data.RawData)
	report, err := orch.Train(ctx)
	if err != nil {
		return err
	}

	logger.WithRun(report.Run.RunID).Infof(
		"Training complete: R2=%.4f MAE=%.0f RMSE=%.0f (%d train / %d test rows)",
		report.Metrics.R2, report.Metrics.MAE, report.Metrics.RMSE,
		report.Metrics.TrainRows, report.Metrics.TestRows,
	)
	for _, st := range report.Stages {
		logger.Infof("  %-8s %s", st.Stage, st.Duration)
	}
	for i, fi := range report.FeatureImportance {
		logger.Infof("  %2d. %-16s %.4f", i+1, fi.Feature, fi.Importance)
	}
	logger.Infof("Artifacts written to %s", cfg.Data.ArtifactDir)
	return nil
}
