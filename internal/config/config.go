/*
Package config handles loading, validating, and saving geocalc configuration.

Configuration is stored in ~/.geocalc.yaml. Every field is optional; missing
values keep their defaults and a missing file means "all defaults".

Schema:

	storage:
	  path: ~/.geocalc/history.db
	  enabled: true
	  retention_days: 0
	stats:
	  timezone: UTC
	  recent_limit: 10
	  default_window_days: 0
	logging:
	  level: warn
	  format: console
	display:
	  precision: 3

Environment variables override the file: GEOCALC_DB_PATH, GEOCALC_TRACKING,
GEOCALC_LOG_LEVEL and GEOCALC_TIMEZONE.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
	_ "time/tzdata" // zone names resolve on hosts without a zoneinfo database

	"github.com/khanglvm/geocalc/internal/storage"
)

const (
	EnvDBPath   = "GEOCALC_DB_PATH"
	EnvTracking = "GEOCALC_TRACKING"
	EnvLogLevel = "GEOCALC_LOG_LEVEL"
	EnvTimezone = "GEOCALC_TIMEZONE"
)

// Config represents the root configuration structure.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Stats   StatsConfig   `yaml:"stats"`
	Logging LoggingConfig `yaml:"logging"`
	Display DisplayConfig `yaml:"display"`
}

// StorageConfig controls the calculation history database.
type StorageConfig struct {
	// Path is the SQLite file. Empty means ~/.geocalc/history.db.
	Path string `yaml:"path,omitempty"`

	// Enabled turns history logging on. When off, calculations are kept in
	// memory for the life of the process only.
	Enabled bool `yaml:"enabled"`

	// RetentionDays is the default age for "history cleanup". Zero keeps everything.
	RetentionDays int `yaml:"retention_days"`
}

// StatsConfig controls statistics queries.
type StatsConfig struct {
	// Timezone buckets hours and days. Any IANA name, "Local" or "UTC".
	Timezone string `yaml:"timezone"`

	RecentLimit       int `yaml:"recent_limit"`
	DefaultWindowDays int `yaml:"default_window_days"`
}

// LoggingConfig controls diagnostic output on stderr.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DisplayConfig controls how numbers are printed.
type DisplayConfig struct {
	Precision int `yaml:"precision"`
}

// NewConfig returns the default configuration.
func NewConfig() *Config {
	return &Config{
		Storage: StorageConfig{Enabled: true},
		Stats: StatsConfig{
			Timezone:    "UTC",
			RecentLimit: 10,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Display: DisplayConfig{Precision: 3},
	}
}

// GetDefaultConfigPath returns the path to ~/.geocalc.yaml
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".geocalc.yaml"), nil
}

// Load reads the configuration from the default path.
func Load() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadOrDefault reads path if it exists and falls back to defaults otherwise.
// Environment overrides are applied and the result is validated.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadFrom(path)
	if err != nil {
		var notFound *ConfigNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		cfg = NewConfig()
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, &InvalidConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDBPath); ok && v != "" {
		c.Storage.Path = v
	}
	if v, ok := lookup(EnvTracking); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not a boolean", EnvTracking, v)
		}
		c.Storage.Enabled = enabled
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup(EnvTimezone); ok && v != "" {
		c.Stats.Timezone = v
	}
	return nil
}

// DBPath returns the configured database path or the default one.
func (c *Config) DBPath() (string, error) {
	if c.Storage.Path == "" {
		return storage.DefaultPath()
	}
	return expandHome(c.Storage.Path)
}

// Location returns the statistics time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Stats.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Stats.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Stats.Timezone, err)
	}
	return loc, nil
}

// Retention returns the cleanup retention period, or zero when unset.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Storage.RetentionDays) * 24 * time.Hour
}

func expandHome(path string) (string, error) {
	if path != "~" && (len(path) < 2 || path[:2] != "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
