package config

import (
	"errors"
	"fmt"

	"github.com/OldStager01/housing-valuator/pkg/apperrors"
)

func (c *Config) Validate() error {
	var errs []error

	// App validation
	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, fmt.Errorf("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, fmt.Errorf("app.log_level must be one of: debug, info, warn, error"))
	}

	// Data validation
	if c.Data.RawData == "" {
		errs = append(errs, errors.New("data.raw_data is required"))
	}
	if c.Data.ArtifactDir == "" {
		errs = append(errs, errors.New("data.artifact_dir is required"))
	}
	if c.Data.ReloadInterval < 0 {
		errs = append(errs, errors.New("data.reload_interval cannot be negative"))
	}

	// Cleaning bounds
	d := c.DataCleaning
	errs = appendRange(errs, "data_cleaning.price", d.PriceMin, d.PriceMax)
	errs = appendRange(errs, "data_cleaning.area", d.AreaMin, d.AreaMax)
	errs = appendRange(errs, "data_cleaning.training_price", d.TrainingPriceMin, d.TrainingPriceMax)
	errs = appendRange(errs, "data_cleaning.training_area", d.TrainingAreaMin, d.TrainingAreaMax)
	errs = appendRange(errs, "data_cleaning.eda_price", d.EDAPriceMin, d.EDAPriceMax)
	errs = appendRange(errs, "data_cleaning.eda_area", d.EDAAreaMin, d.EDAAreaMax)

	// Request validation bounds
	val := c.Validation
	errs = appendRange(errs, "validation.area", val.AreaMin, val.AreaMax)
	errs = appendRange(errs, "validation.room", float64(val.RoomMin), float64(val.RoomMax))
	errs = appendRange(errs, "validation.salon", float64(val.SalonMin), float64(val.SalonMax))
	if val.AgeMin < 0 || val.AgeMax < val.AgeMin {
		errs = append(errs, errors.New("validation.age_min must be >= 0 and <= age_max"))
	}

	// Model validation
	m := c.Model
	if m.MaxIter <= 0 {
		errs = append(errs, errors.New("model.max_iter must be positive"))
	}
	if m.LearningRate <= 0 {
		errs = append(errs, errors.New("model.learning_rate must be positive"))
	}
	if m.MaxDepth <= 0 {
		errs = append(errs, errors.New("model.max_depth must be positive"))
	}
	if m.L2Regularization < 0 {
		errs = append(errs, errors.New("model.l2_regularization must be >= 0"))
	}
	if m.TestSize <= 0 || m.TestSize >= 1 {
		errs = append(errs, errors.New("model.test_size must be between 0 and 1 (exclusive)"))
	}
	if m.MaxBins < 2 || m.MaxBins > 255 {
		errs = append(errs, errors.New("model.max_bins must be between 2 and 255"))
	}
	if m.MaxLeafNodes < 2 {
		errs = append(errs, errors.New("model.max_leaf_nodes must be at least 2"))
	}
	if m.MinSamplesLeaf <= 0 {
		errs = append(errs, errors.New("model.min_samples_leaf must be positive"))
	}

	// Luxury score validation
	l := c.LuxuryScore
	if !(l.PriceThresholds.UltraLuxury > l.PriceThresholds.Luxury && l.PriceThresholds.Luxury > l.PriceThresholds.Premium) {
		errs = append(errs, errors.New("luxury_score.price_thresholds must satisfy ultra_luxury > luxury > premium"))
	}
	if !(l.AreaThresholds.VeryLarge > l.AreaThresholds.Large && l.AreaThresholds.Large > l.AreaThresholds.Medium) {
		errs = append(errs, errors.New("luxury_score.area_thresholds must satisfy very_large > large > medium"))
	}
	b := l.AgeBands
	if !(b.VeryRecent > 0 && b.Recent > b.VeryRecent && b.Moderate > b.Recent && b.Old > b.Moderate && b.VeryOld > b.Old) {
		errs = append(errs, errors.New("luxury_score.age_bands must be positive and strictly increasing"))
	}
	cc := l.CategoryThresholds
	if !(cc.UltraLuxury > cc.LuxuryProperty && cc.LuxuryProperty > cc.Comfortable && cc.Comfortable > 0) {
		errs = append(errs, errors.New("luxury_score.category_thresholds must satisfy ultra_luxury > luxury_property > comfortable > 0"))
	}

	// API validation
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}
	if c.API.DefaultLimit <= 0 || c.API.MaxLimit < c.API.DefaultLimit {
		errs = append(errs, errors.New("api.default_limit must be positive and <= api.max_limit"))
	}

	// Database validation only matters when persistence is on
	if c.Database.Enabled {
		if c.Database.Host == "" {
			errs = append(errs, errors.New("database.host is required"))
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, errors.New("database.port must be between 1 and 65535"))
		}
		if c.Database.Name == "" {
			errs = append(errs, errors.New("database.name is required"))
		}
		if c.Database.MaxConnections <= 0 {
			errs = append(errs, errors.New("database.max_connections must be positive"))
		}
	}

	if c.Cache.Enabled {
		if c.Cache.RedisURL == "" {
			errs = append(errs, errors.New("cache.redis_url is required"))
		}
		if c.Cache.TTL <= 0 {
			errs = append(errs, errors.New("cache.ttl must be positive"))
		}
	}

	if len(errs) > 0 {
		return &apperrors.ConfigError{Err: fmt.Errorf("config validation failed: %w", errors.Join(errs...))}
	}

	return nil
}

func appendRange(errs []error, name string, min, max float64) []error {
	if min < 0 || max <= min {
		return append(errs, fmt.Errorf("%s_min must be >= 0 and less than %s_max", name, name))
	}
	return errs
}
