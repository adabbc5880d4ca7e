// Package config provides configuration management for the NBA Oracle application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Predictor  PredictorConfig  `mapstructure:"predictor" validate:"required"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline" validate:"required"`
	Aggregator AggregatorConfig `mapstructure:"aggregator" validate:"required"`
	Backtest   BacktestConfig   `mapstructure:"backtest" validate:"required"`
	Data       DataConfig       `mapstructure:"data" validate:"required"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Health     HealthConfig     `mapstructure:"health"`
	Stream     StreamConfig     `mapstructure:"stream"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// RedisConfig represents the shared prediction cache connection
type RedisConfig struct {
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db" validate:"gte=0"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// PredictorConfig represents the win probability model service configuration
type PredictorConfig struct {
	Transport         string               `mapstructure:"transport" validate:"required,predictortransport"`
	GRPCAddress       string               `mapstructure:"grpc_address"`
	HTTPAddress       string               `mapstructure:"http_address" validate:"omitempty,url"`
	APIKey            string               `mapstructure:"api_key"`
	ModelVersion      string               `mapstructure:"model_version" validate:"required"`
	TimeoutSeconds    int                  `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts     int                  `mapstructure:"retry_attempts" validate:"gte=0"`
	RequestsPerSecond float64              `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int                  `mapstructure:"burst" validate:"gte=0"`
	VerifySchema      bool                 `mapstructure:"verify_schema"`
	HomeEdge          float64              `mapstructure:"home_edge" validate:"gte=0"`
	Cache             PredictorCacheConfig `mapstructure:"cache"`
}

// PredictorCacheConfig represents prediction caching
type PredictorCacheConfig struct {
	Backend    string `mapstructure:"backend" validate:"required,cachebackend"`
	TTLSeconds int    `mapstructure:"ttl_seconds" validate:"gte=0"`
	MaxSize    int    `mapstructure:"max_size" validate:"gte=0"`
}

// PipelineConfig holds the rating and feature derivation constants
type PipelineConfig struct {
	K               float64 `mapstructure:"k" validate:"gt=0"`
	MarginWeight    float64 `mapstructure:"margin_weight" validate:"gte=0"`
	Baseline        float64 `mapstructure:"baseline" validate:"gt=0"`
	WindowSize      int     `mapstructure:"window_size" validate:"gt=0"`
	DefaultRestDays int     `mapstructure:"default_rest_days" validate:"gte=0"`
	MinRestDays     int     `mapstructure:"min_rest_days" validate:"gte=0"`
	MaxRestDays     int     `mapstructure:"max_rest_days" validate:"gte=0"`
}

// AggregatorConfig holds the fixture combination constants
type AggregatorConfig struct {
	KeyPlayerPenalty float64 `mapstructure:"key_player_penalty" validate:"gte=0,lte=1"`
	MinProbability   float64 `mapstructure:"min_probability" validate:"gte=0,lte=1"`
	MaxProbability   float64 `mapstructure:"max_probability" validate:"gte=0,lte=1"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	TestFraction       float64 `mapstructure:"test_fraction" validate:"gt=0,lt=1"`
	CalibrationBuckets int     `mapstructure:"calibration_buckets" validate:"gt=0"`
	TrainWindowDays    int     `mapstructure:"train_window_days" validate:"gt=0"`
	TestWindowDays     int     `mapstructure:"test_window_days" validate:"gt=0"`
	StepDays           int     `mapstructure:"step_days" validate:"gt=0"`
	MinExamples        int     `mapstructure:"min_examples" validate:"gte=0"`
	OutputPath         string  `mapstructure:"output_path" validate:"required"`
	PersistResults     bool    `mapstructure:"persist_results"`
}

// DataConfig represents game log and fixture input configuration
type DataConfig struct {
	Source          string `mapstructure:"source" validate:"required,oneof=csv database"`
	GamesCSV        string `mapstructure:"games_csv"`
	FixturesCSV     string `mapstructure:"fixtures_csv"`
	FeaturesCSV     string `mapstructure:"features_csv"`
	IngestBatchSize int    `mapstructure:"ingest_batch_size" validate:"gt=0"`
}

// ScheduleConfig represents the cron schedule of background jobs
type ScheduleConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	IngestCron  string `mapstructure:"ingest_cron"`
	PredictCron string `mapstructure:"predict_cron"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// HealthConfig represents the health check server
type HealthConfig struct {
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
}

// StreamConfig represents the live prediction feed
type StreamConfig struct {
	Enabled             bool   `mapstructure:"enabled"`
	Path                string `mapstructure:"path"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds" validate:"gte=0"`
	BufferSize          int    `mapstructure:"buffer_size" validate:"gte=0"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// PredictorTimeout returns the per-request predictor timeout
func (c *Config) PredictorTimeout() time.Duration {
	return time.Duration(c.Predictor.TimeoutSeconds) * time.Second
}

// CacheTTL returns the prediction cache lifetime
func (c *PredictorConfig) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}
