// Package config provides configuration management for the NBA Oracle application.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

const (
	TransportGRPC     = "grpc"
	TransportHTTP     = "http"
	TransportBaseline = "baseline"

	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("predictortransport", validatePredictorTransport)
	_ = v.RegisterValidation("cachebackend", validateCacheBackend)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validatePredictorTransport(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case TransportGRPC, TransportHTTP, TransportBaseline:
		return true
	default:
		return false
	}
}

func validateCacheBackend(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case CacheBackendNone, CacheBackendMemory, CacheBackendRedis:
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	p := cfg.Pipeline
	if p.MinRestDays > p.MaxRestDays {
		return fmt.Errorf("pipeline min_rest_days cannot exceed max_rest_days")
	}
	if p.DefaultRestDays < p.MinRestDays || p.DefaultRestDays > p.MaxRestDays {
		return fmt.Errorf("pipeline default_rest_days must lie within [min_rest_days, max_rest_days]")
	}

	if cfg.Aggregator.MinProbability >= cfg.Aggregator.MaxProbability {
		return fmt.Errorf("aggregator min_probability must be below max_probability")
	}

	switch cfg.Predictor.Transport {
	case TransportGRPC:
		if cfg.Predictor.GRPCAddress == "" {
			return fmt.Errorf("predictor grpc_address is required for the grpc transport")
		}
	case TransportHTTP:
		if cfg.Predictor.HTTPAddress == "" {
			return fmt.Errorf("predictor http_address is required for the http transport")
		}
	}

	if cfg.Predictor.Cache.Backend == CacheBackendRedis && cfg.Redis.Address == "" {
		return fmt.Errorf("redis address is required when the prediction cache backend is redis")
	}
	if cfg.Predictor.Cache.Backend != CacheBackendNone && cfg.Predictor.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("predictor cache ttl_seconds must be positive when caching is enabled")
	}

	if cfg.Data.Source == "csv" && cfg.Data.GamesCSV == "" {
		return fmt.Errorf("data games_csv is required for the csv source")
	}

	if cfg.Schedule.Enabled {
		for name, expr := range map[string]string{
			"ingest_cron":  cfg.Schedule.IngestCron,
			"predict_cron": cfg.Schedule.PredictCron,
		} {
			if _, err := cron.ParseStandard(expr); err != nil {
				return fmt.Errorf("invalid schedule %s %q: %w", name, expr, err)
			}
		}
	}

	if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
		return fmt.Errorf("max_idle_connections cannot exceed max_connections")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var b strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.Namespace()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			fmt.Fprintf(&b, "- Field '%s' is required\n", field)
		case "url":
			fmt.Fprintf(&b, "- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			fmt.Fprintf(&b, "- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			fmt.Fprintf(&b, "- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			fmt.Fprintf(&b, "- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			fmt.Fprintf(&b, "- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "predictortransport":
			fmt.Fprintf(&b, "- Field '%s' must be one of: grpc, http, baseline\n", field)
		case "cachebackend":
			fmt.Fprintf(&b, "- Field '%s' must be one of: none, memory, redis\n", field)
		case "oneof":
			fmt.Fprintf(&b, "- Field '%s' has invalid value '%v'\n", field, value)
		default:
			fmt.Fprintf(&b, "- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", b.String())
}
