// Package aggregator combines the two per-side win probabilities of a fixture into one
// home-win probability.
package aggregator

import (
	"errors"
	"fmt"
	"math"

	"github.com/yourusername/nba-oracle/internal/models"
)

const (
	DefaultKeyPlayerPenalty = 0.15
	DefaultMinProbability   = 0.01
	DefaultMaxProbability   = 0.99
)

// ErrInvalidProbability is returned when a side probability is not a finite value within [0, 1]
var ErrInvalidProbability = errors.New("side probability must be within [0, 1]")

// Config holds the override penalty and output bounds
type Config struct {
	KeyPlayerPenalty float64 `mapstructure:"key_player_penalty"`
	MinProbability   float64 `mapstructure:"min_probability"`
	MaxProbability   float64 `mapstructure:"max_probability"`
}

// DefaultConfig returns the standard aggregation constants
func DefaultConfig() Config {
	return Config{
		KeyPlayerPenalty: DefaultKeyPlayerPenalty,
		MinProbability:   DefaultMinProbability,
		MaxProbability:   DefaultMaxProbability,
	}
}

// Validate checks the aggregation constants
func (c Config) Validate() error {
	if c.KeyPlayerPenalty < 0 || c.KeyPlayerPenalty > 1 {
		return fmt.Errorf("key player penalty must be within [0, 1], got %v", c.KeyPlayerPenalty)
	}
	if c.MinProbability < 0 || c.MaxProbability > 1 || c.MinProbability >= c.MaxProbability {
		return fmt.Errorf("invalid probability bounds [%v, %v]", c.MinProbability, c.MaxProbability)
	}
	return nil
}

// Aggregator turns per-side probabilities into a fixture probability
type Aggregator struct {
	config Config
}

// New creates an aggregator
func New(cfg Config) (*Aggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid aggregator config: %w", err)
	}
	return &Aggregator{config: cfg}, nil
}

// Combine averages the home side's win probability with the complement of the away side's,
// applies the key player adjustments and clamps the result. Side probabilities outside [0, 1],
// NaN included, are rejected.
func (a *Aggregator) Combine(probHome, probAway float64, overrides models.Overrides) (float64, error) {
	for _, p := range []float64{probHome, probAway} {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return 0, fmt.Errorf("%w: %v", ErrInvalidProbability, p)
		}
	}

	final := (probHome + (1 - probAway)) / 2
	if overrides.HomeKeyPlayerOut {
		final -= a.config.KeyPlayerPenalty
	}
	if overrides.AwayKeyPlayerOut {
		final += a.config.KeyPlayerPenalty
	}
	return a.Clamp(final), nil
}

// Clamp bounds p to the configured probability range. p must not be NaN.
func (a *Aggregator) Clamp(p float64) float64 {
	return math.Min(a.config.MaxProbability, math.Max(a.config.MinProbability, p))
}
