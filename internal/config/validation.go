package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// maxPrecision bounds display.precision; float64 carries about 15 significant digits.
const maxPrecision = 12

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Storage.RetentionDays < 0 {
		errs = append(errs, fmt.Errorf("storage.retention_days must not be negative, got %d", c.Storage.RetentionDays))
	}

	if c.Stats.Timezone != "" {
		if _, err := time.LoadLocation(c.Stats.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("stats.timezone: unknown zone %q", c.Stats.Timezone))
		}
	}
	if c.Stats.RecentLimit < 0 {
		errs = append(errs, fmt.Errorf("stats.recent_limit must not be negative, got %d", c.Stats.RecentLimit))
	}
	if c.Stats.DefaultWindowDays < 0 {
		errs = append(errs, fmt.Errorf("stats.default_window_days must not be negative, got %d", c.Stats.DefaultWindowDays))
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}

	if c.Display.Precision < 0 || c.Display.Precision > maxPrecision {
		errs = append(errs, fmt.Errorf("display.precision must be between 0 and %d, got %d", maxPrecision, c.Display.Precision))
	}

	return errors.Join(errs...)
}
