package features

import "fmt"

const (
	DefaultWindowSize      = 10
	DefaultRestDaysDefault = 3
	DefaultMinRestDays     = 0
	DefaultMaxRestDays     = 7
)

// Config holds the feature derivation parameters
type Config struct {
	WindowSize      int `mapstructure:"window_size"`
	DefaultRestDays int `mapstructure:"default_rest_days"`
	MinRestDays     int `mapstructure:"min_rest_days"`
	MaxRestDays     int `mapstructure:"max_rest_days"`
}

// DefaultConfig returns the standard feature parameters
func DefaultConfig() Config {
	return Config{
		WindowSize:      DefaultWindowSize,
		DefaultRestDays: DefaultRestDaysDefault,
		MinRestDays:     DefaultMinRestDays,
		MaxRestDays:     DefaultMaxRestDays,
	}
}

// Validate checks the feature parameters
func (c Config) Validate() error {
	if c.WindowSize <= 0 {
		return fmt.Errorf("window size must be positive, got %d", c.WindowSize)
	}
	if c.MinRestDays > c.MaxRestDays {
		return fmt.Errorf("min rest days %d exceeds max rest days %d", c.MinRestDays, c.MaxRestDays)
	}
	if c.DefaultRestDays < c.MinRestDays || c.DefaultRestDays > c.MaxRestDays {
		return fmt.Errorf("default rest days %d outside [%d, %d]", c.DefaultRestDays, c.MinRestDays, c.MaxRestDays)
	}
	return nil
}
