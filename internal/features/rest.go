package features

import (
	"time"

	"github.com/yourusername/nba-oracle/internal/models"
)

// RestDays returns the days since lastGame clamped to [min, max]. hasPrevious is false for a
// team's first game, which gets defaultDays.
func RestDays(lastGame time.Time, hasPrevious bool, current time.Time, cfg Config) float64 {
	if !hasPrevious {
		return float64(cfg.DefaultRestDays)
	}
	days := models.DaysBetween(lastGame, current)
	if days < cfg.MinRestDays {
		days = cfg.MinRestDays
	}
	if days > cfg.MaxRestDays {
		days = cfg.MaxRestDays
	}
	return float64(days)
}
