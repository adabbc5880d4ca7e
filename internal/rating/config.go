package rating

import "fmt"

const (
	DefaultK            = 20.0
	DefaultMarginWeight = 0.1
	DefaultBaseline     = 1500.0
)

// Config holds the rating update constants
type Config struct {
	K            float64 `mapstructure:"k"`
	MarginWeight float64 `mapstructure:"margin_weight"`
	Baseline     float64 `mapstructure:"baseline"`
}

// DefaultConfig returns the standard rating constants
func DefaultConfig() Config {
	return Config{
		K:            DefaultK,
		MarginWeight: DefaultMarginWeight,
		Baseline:     DefaultBaseline,
	}
}

// Validate checks the rating constants
func (c Config) Validate() error {
	if c.K <= 0 {
		return fmt.Errorf("k must be positive, got %v", c.K)
	}
	if c.MarginWeight < 0 {
		return fmt.Errorf("margin weight must be non-negative, got %v", c.MarginWeight)
	}
	if c.Baseline <= 0 {
		return fmt.Errorf("baseline must be positive, got %v", c.Baseline)
	}
	return nil
}
