package config

import (
	"path/filepath"
	"time"
)

type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Project      ProjectConfig      `mapstructure:"project"`
	Data         DataConfig         `mapstructure:"data"`
	DataCleaning DataCleaningConfig `mapstructure:"data_cleaning"`
	Validation   ValidationConfig   `mapstructure:"validation"`
	Model        ModelConfig        `mapstructure:"model"`
	LuxuryScore  LuxuryScoreConfig  `mapstructure:"luxury_score"`
	API          APIConfig          `mapstructure:"api"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Prometheus   PrometheusConfig   `mapstructure:"prometheus"`
	Events       EventsConfig       `mapstructure:"events"`

	raw map[string]interface{}
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Mode            string        `mapstructure:"mode"`
	LogLevel        string        `mapstructure:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type ProjectConfig struct {
	Name   string `mapstructure:"name"`
	Course string `mapstructure:"course"`
	Author string `mapstructure:"author"`
}

type DataConfig struct {
	RawData               string `mapstructure:"raw_data"`
	ArtifactDir           string `mapstructure:"artifact_dir"`
	ModelFile             string `mapstructure:"model_file"`
	DistrictsFile         string `mapstructure:"districts_file"`
	PropertyTypesFile     string `mapstructure:"property_types_file"`
	MetricsFile           string `mapstructure:"metrics_file"`
	FeatureImportanceFile string `mapstructure:"feature_importance_file"`
	DistrictScoresFile    string `mapstructure:"district_scores_file"`
	// ReloadInterval polls the artifact manifest for a newer run; 0 disables it.
	ReloadInterval time.Duration `mapstructure:"reload_interval"`
}

// ArtifactPath joins name onto the artifact directory.
func (d DataConfig) ArtifactPath(name string) string {
	return filepath.Join(d.ArtifactDir, name)
}

type DataCleaningConfig struct {
	PriceMin         float64 `mapstructure:"price_min"`
	PriceMax         float64 `mapstructure:"price_max"`
	AreaMin          float64 `mapstructure:"area_min"`
	AreaMax          float64 `mapstructure:"area_max"`
	TrainingPriceMin float64 `mapstructure:"training_price_min"`
	TrainingPriceMax float64 `mapstructure:"training_price_max"`
	TrainingAreaMin  float64 `mapstructure:"training_area_min"`
	TrainingAreaMax  float64 `mapstructure:"training_area_max"`
	EDAPriceMin      float64 `mapstructure:"eda_price_min"`
	EDAPriceMax      float64 `mapstructure:"eda_price_max"`
	EDAAreaMin       float64 `mapstructure:"eda_area_min"`
	EDAAreaMax       float64 `mapstructure:"eda_area_max"`
}

type ValidationConfig struct {
	AreaMin  float64 `mapstructure:"area_min"`
	AreaMax  float64 `mapstructure:"area_max"`
	RoomMin  int     `mapstructure:"room_min"`
	RoomMax  int     `mapstructure:"room_max"`
	SalonMin int     `mapstructure:"salon_min"`
	SalonMax int     `mapstructure:"salon_max"`
	AgeMin   int     `mapstructure:"age_min"`
	AgeMax   int     `mapstructure:"age_max"`
}

type ModelConfig struct {
	MaxIter              int     `mapstructure:"max_iter"`
	LearningRate         float64 `mapstructure:"learning_rate"`
	MaxDepth             int     `mapstructure:"max_depth"`
	L2Regularization     float64 `mapstructure:"l2_regularization"`
	RandomState          int64   `mapstructure:"random_state"`
	TestSize             float64 `mapstructure:"test_size"`
	MaxBins              int     `mapstructure:"max_bins"`
	MaxLeafNodes         int     `mapstructure:"max_leaf_nodes"`
	MinSamplesLeaf       int     `mapstructure:"min_samples_leaf"`
	DefaultDistrictScore float64 `mapstructure:"default_district_score"`
	ImportanceTopN       int     `mapstructure:"importance_top_n"`
}

type LuxuryScoreConfig struct {
	PriceThresholds    PriceThresholds `mapstructure:"price_thresholds"`
	PricePoints        TierPoints      `mapstructure:"price_points"`
	AreaThresholds     AreaThresholds  `mapstructure:"area_thresholds"`
	AreaPoints         TierPoints      `mapstructure:"area_points"`
	LuxuryDistricts    []string        `mapstructure:"luxury_districts"`
	DistrictPoints     int             `mapstructure:"district_points"`
	LuxuryTypes        []string        `mapstructure:"luxury_types"`
	TypePoints         int             `mapstructure:"type_points"`
	AgeBands           AgeBands        `mapstructure:"age_bands"`
	AgeWeights         AgeWeights      `mapstructure:"age_weights"`
	CategoryThresholds CategoryCutoffs `mapstructure:"category_thresholds"`
}

type PriceThresholds struct {
	UltraLuxury float64 `mapstructure:"ultra_luxury"`
	Luxury      float64 `mapstructure:"luxury"`
	Premium     float64 `mapstructure:"premium"`
}

type AreaThresholds struct {
	VeryLarge float64 `mapstructure:"very_large"`
	Large     float64 `mapstructure:"large"`
	Medium    float64 `mapstructure:"medium"`
}

// TierPoints are the points awarded above each of three thresholds and below all of them.
type TierPoints struct {
	Top    int `mapstructure:"top"`
	High   int `mapstructure:"high"`
	Middle int `mapstructure:"middle"`
	Base   int `mapstructure:"base"`
}

// AgeBands are inclusive upper bounds of each age band.
type AgeBands struct {
	VeryRecent int `mapstructure:"very_recent"`
	Recent     int `mapstructure:"recent"`
	Moderate   int `mapstructure:"moderate"`
	Old        int `mapstructure:"old"`
	VeryOld    int `mapstructure:"very_old"`
}

type AgeWeights struct {
	New        int `mapstructure:"new"`
	VeryRecent int `mapstructure:"very_recent"`
	Recent     int `mapstructure:"recent"`
	Moderate   int `mapstructure:"moderate"`
	Old        int `mapstructure:"old"`
	VeryOld    int `mapstructure:"very_old"`
	Ancient    int `mapstructure:"ancient"`
}

type CategoryCutoffs struct {
	UltraLuxury    int `mapstructure:"ultra_luxury"`
	LuxuryProperty int `mapstructure:"luxury_property"`
	Comfortable    int `mapstructure:"comfortable"`
}

type APIConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	RateLimit    int           `mapstructure:"rate_limit"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	DefaultLimit int           `mapstructure:"default_limit"`
	MaxLimit     int           `mapstructure:"max_limit"`
	CORS         CORSConfig    `mapstructure:"cors"`
}

type DatabaseConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	Name             string        `mapstructure:"name"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	MaxConnections   int           `mapstructure:"max_connections"`
	SSLMode          string        `mapstructure:"ssl_mode"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime  time.Duration `mapstructure:"conn_max_idle_time"`
	PingTimeout      time.Duration `mapstructure:"ping_timeout"`
	MigrationTimeout time.Duration `mapstructure:"migration_timeout"`
}

type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	RedisURL  string        `mapstructure:"redis_url"`
	TTL       time.Duration `mapstructure:"ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	// Consecutive failures before the cache is skipped for BreakerCooldown.
	BreakerFailures int           `mapstructure:"breaker_failures"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type EventsConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
}
