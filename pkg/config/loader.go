package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "VALUATOR"

func Load(configPath string) (*Config, error) {
	loadEnvFile()

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file settings
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/housing-valuator")
	}

	// Environment variable settings
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	return fromViper(v)
}

// Default returns the configuration built from defaults alone.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := fromViper(v)
	if err != nil {
		panic(fmt.Sprintf("config defaults do not decode: %v", err))
	}
	return cfg
}

func fromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.raw = v.AllSettings()
	return &cfg, nil
}

// loadEnvFile loads the first .env found in the working directory or the
// directory holding go.mod. Missing files are not an error.
func loadEnvFile() {
	candidates := []string{".env"}
	if root := findProjectRoot(); root != "" {
		candidates = append(candidates, filepath.Join(root, ".env"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "housing-valuator")
	v.SetDefault("app.mode", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.shutdown_timeout", "30s")

	v.SetDefault("project.name", "Izmir Housing Price Prediction")
	v.SetDefault("project.course", "Introduction to Artificial Intelligence")
	v.SetDefault("project.author", "")

	// Data paths
	v.SetDefault("data.raw_data", "data/izmir_housing.csv")
	v.SetDefault("data.artifact_dir", "models")
	v.SetDefault("data.model_file", "model.gob")
	v.SetDefault("data.districts_file", "districts.gob")
	v.SetDefault("data.property_types_file", "property_types.gob")
	v.SetDefault("data.metrics_file", "metrics.gob")
	v.SetDefault("data.feature_importance_file", "feature_importance.gob")
	v.SetDefault("data.district_scores_file", "district_scores.gob")
	v.SetDefault("data.reload_interval", "0s")

	// Cleaning bounds: serving, training and exploratory variants
	v.SetDefault("data_cleaning.price_min", 100000.0)
	v.SetDefault("data_cleaning.price_max", 50000000.0)
	v.SetDefault("data_cleaning.area_min", 20.0)
	v.SetDefault("data_cleaning.area_max", 1000.0)
	v.SetDefault("data_cleaning.training_price_min", 300000.0)
	v.SetDefault("data_cleaning.training_price_max", 35000000.0)
	v.SetDefault("data_cleaning.training_area_min", 40.0)
	v.SetDefault("data_cleaning.training_area_max", 450.0)
	v.SetDefault("data_cleaning.eda_price_min", 100000.0)
	v.SetDefault("data_cleaning.eda_price_max", 25000000.0)
	v.SetDefault("data_cleaning.eda_area_min", 20.0)
	v.SetDefault("data_cleaning.eda_area_max", 400.0)

	// Request validation
	v.SetDefault("validation.area_min", 20.0)
	v.SetDefault("validation.area_max", 1000.0)
	v.SetDefault("validation.room_min", 1)
	v.SetDefault("validation.room_max", 10)
	v.SetDefault("validation.salon_min", 1)
	v.SetDefault("validation.salon_max", 5)
	v.SetDefault("validation.age_min", 0)
	v.SetDefault("validation.age_max", 100)

	// Model hyperparameters
	v.SetDefault("model.max_iter", 500)
	v.SetDefault("model.learning_rate", 0.05)
	v.SetDefault("model.max_depth", 10)
	v.SetDefault("model.l2_regularization", 0.1)
	v.SetDefault("model.random_state", 42)
	v.SetDefault("model.test_size", 0.2)
	v.SetDefault("model.max_bins", 255)
	v.SetDefault("model.max_leaf_nodes", 31)
	v.SetDefault("model.min_samples_leaf", 20)
	v.SetDefault("model.default_district_score", 50000.0)
	v.SetDefault("model.importance_top_n", 10)

	// Luxury score
	v.SetDefault("luxury_score.price_thresholds.ultra_luxury", 20000000.0)
	v.SetDefault("luxury_score.price_thresholds.luxury", 10000000.0)
	v.SetDefault("luxury_score.price_thresholds.premium", 5000000.0)
	v.SetDefault("luxury_score.price_points.top", 40)
	v.SetDefault("luxury_score.price_points.high", 30)
	v.SetDefault("luxury_score.price_points.middle", 20)
	v.SetDefault("luxury_score.price_points.base", 5)
	v.SetDefault("luxury_score.area_thresholds.very_large", 350.0)
	v.SetDefault("luxury_score.area_thresholds.large", 200.0)
	v.SetDefault("luxury_score.area_thresholds.medium", 130.0)
	v.SetDefault("luxury_score.area_points.top", 25)
	v.SetDefault("luxury_score.area_points.high", 15)
	v.SetDefault("luxury_score.area_points.middle", 10)
	v.SetDefault("luxury_score.area_points.base", 0)
	v.SetDefault("luxury_score.luxury_districts", []string{"Cesme", "Çeşme", "Urla", "Guzelbahce", "Güzelbahçe", "Narlidere", "Narlıdere", "Seferihisar"})
	v.SetDefault("luxury_score.district_points", 20)
	v.SetDefault("luxury_score.luxury_types", []string{"Villa", "Mustakil", "Müstakil", "Yali", "Yalı"})
	v.SetDefault("luxury_score.type_points", 15)
	v.SetDefault("luxury_score.age_bands.very_recent", 3)
	v.SetDefault("luxury_score.age_bands.recent", 8)
	v.SetDefault("luxury_score.age_bands.moderate", 15)
	v.SetDefault("luxury_score.age_bands.old", 25)
	v.SetDefault("luxury_score.age_bands.very_old", 40)
	v.SetDefault("luxury_score.age_weights.new", 15)
	v.SetDefault("luxury_score.age_weights.very_recent", 10)
	v.SetDefault("luxury_score.age_weights.recent", 5)
	v.SetDefault("luxury_score.age_weights.moderate", 0)
	v.SetDefault("luxury_score.age_weights.old", -5)
	v.SetDefault("luxury_score.age_weights.very_old", -10)
	v.SetDefault("luxury_score.age_weights.ancient", -15)
	v.SetDefault("luxury_score.category_thresholds.ultra_luxury", 85)
	v.SetDefault("luxury_score.category_thresholds.luxury_property", 65)
	v.SetDefault("luxury_score.category_thresholds.comfortable", 45)

	// API defaults
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout", "15s")
	v.SetDefault("api.write_timeout", "15s")
	v.SetDefault("api.idle_timeout", "60s")
	v.SetDefault("api.rate_limit", 100)
	v.SetDefault("api.max_body_bytes", 1<<20)
	v.SetDefault("api.default_limit", 20)
	v.SetDefault("api.max_limit", 200)
	v.SetDefault("api.cors.allowed_origins", []string{"*"})
	v.SetDefault("api.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("api.cors.allowed_headers", []string{"Origin", "Content-Type", "Accept", "X-Trace-ID"})
	v.SetDefault("api.cors.exposed_headers", []string{"X-Trace-ID"})
	v.SetDefault("api.cors.allow_credentials", false)

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "valuator")
	v.SetDefault("database.user", "admin")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.conn_max_idle_time", "5m")
	v.SetDefault("database.ping_timeout", "10s")
	v.SetDefault("database.migration_timeout", "60s")

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.redis_url", "redis://localhost:6379/0")
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.key_prefix", "valuator:prediction:")
	v.SetDefault("cache.breaker_failures", 5)
	v.SetDefault("cache.breaker_cooldown", "30s")

	// Prometheus defaults
	v.SetDefault("prometheus.enabled", true)
	v.SetDefault("prometheus.path", "/metrics")

	v.SetDefault("events.buffer_size", 256)
}
