// Package config provides configuration management for the NBA Oracle application.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every environment override, e.g. NBA_ORACLE_DATABASE_HOST
	EnvPrefix         = "NBA_ORACLE"
	defaultConfigPath = "config/config.yaml"
	defaultDotEnvPath = ".env"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if err := LoadDotEnv(defaultDotEnvPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := readExpanded(v, data); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for every optional field.
// A missing config file is not an error; defaults and environment variables are used instead.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if err := LoadDotEnv(defaultDotEnvPath); err != nil {
		return nil, err
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := readExpanded(v, data); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from a dotenv file into the process environment.
// Variables already set are left untouched and a missing file is ignored.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// readExpanded expands ${VAR} placeholders before handing the YAML to viper
func readExpanded(v *viper.Viper, data []byte) error {
	expanded := os.ExpandEnv(string(data))
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "nba-oracle")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "nba_oracle")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 5)

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "nba-oracle:prediction:")

	v.SetDefault("predictor.transport", "baseline")
	v.SetDefault("predictor.grpc_address", "")
	v.SetDefault("predictor.http_address", "")
	v.SetDefault("predictor.api_key", "")
	v.SetDefault("predictor.model_version", "baseline")
	v.SetDefault("predictor.timeout_seconds", 5)
	v.SetDefault("predictor.retry_attempts", 3)
	v.SetDefault("predictor.requests_per_second", 0)
	v.SetDefault("predictor.burst", 1)
	v.SetDefault("predictor.verify_schema", true)
	v.SetDefault("predictor.home_edge", 100)
	v.SetDefault("predictor.cache.backend", "memory")
	v.SetDefault("predictor.cache.ttl_seconds", 3600)
	v.SetDefault("predictor.cache.max_size", 10000)

	v.SetDefault("pipeline.k", 20.0)
	v.SetDefault("pipeline.margin_weight", 0.1)
	v.SetDefault("pipeline.baseline", 1500.0)
	v.SetDefault("pipeline.window_size", 10)
	v.SetDefault("pipeline.default_rest_days", 3)
	v.SetDefault("pipeline.min_rest_days", 0)
	v.SetDefault("pipeline.max_rest_days", 7)

	v.SetDefault("aggregator.key_player_penalty", 0.15)
	v.SetDefault("aggregator.min_probability", 0.01)
	v.SetDefault("aggregator.max_probability", 0.99)

	v.SetDefault("backtest.test_fraction", 0.15)
	v.SetDefault("backtest.calibration_buckets", 10)
	v.SetDefault("backtest.train_window_days", 365)
	v.SetDefault("backtest.test_window_days", 30)
	v.SetDefault("backtest.step_days", 30)
	v.SetDefault("backtest.min_examples", 20)
	v.SetDefault("backtest.output_path", "output/backtest")
	v.SetDefault("backtest.persist_results", false)

	v.SetDefault("data.source", "csv")
	v.SetDefault("data.games_csv", "data/games.csv")
	v.SetDefault("data.fixtures_csv", "data/fixtures.csv")
	v.SetDefault("data.features_csv", "data/features.csv")
	v.SetDefault("data.ingest_batch_size", 500)

	v.SetDefault("schedule.enabled", false)
	v.SetDefault("schedule.ingest_cron", "0 6 * * *")
	v.SetDefault("schedule.predict_cron", "30 6 * * *")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("health.port", 8080)

	v.SetDefault("stream.enabled", true)
	v.SetDefault("stream.path", "/ws/predictions")
	v.SetDefault("stream.write_timeout_seconds", 10)
	v.SetDefault("stream.buffer_size", 64)
}
