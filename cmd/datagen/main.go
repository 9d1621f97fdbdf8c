package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/OldStager01/housing-valuator/internal/dataset"
	"github.com/OldStager01/housing-valuator/internal/logger"
	"github.com/OldStager01/housing-valuator/internal/simulator"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	out := flag.String("out", "data/izmir_housing.csv", "output CSV path")
	rows := flag.Int("rows", 2000, "number of listings")
	seed := flag.Int64("seed", 42, "random seed")
	market := flag.String("market", "izmir", "market profile: izmir or flat")
	noise := flag.Float64("noise", 0.12, "relative price noise")
	missing := flag.Float64("missing-rate", 0.01, "share of blank cells")
	outliers := flag.Float64("outlier-rate", 0.01, "share of corrupt rows")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger.Setup(*logLevel, "development")

	m := simulator.ParseMarket(*market)
	records := simulator.New(simulator.Config{
		Rows:        *rows,
		Seed:        *seed,
		Market:      m,
		Noise:       *noise,
		MissingRate: *missing,
		OutlierRate: *outliers,
	}).Generate()

	if err := dataset.Write(*out, records); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}

	logger.Infof("Wrote %d listings to %s (seed %d, market %s)", len(records), *out, *seed, m.Name)
	return nil
}
