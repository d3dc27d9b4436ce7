package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if !cfg.Storage.Enabled {
		t.Error("Default Storage.Enabled should be true")
	}

	if cfg.Stats.Timezone != "UTC" {
		t.Errorf("Default timezone should be UTC, got %q", cfg.Stats.Timezone)
	}

	if cfg.Stats.RecentLimit != 10 {
		t.Errorf("Default RecentLimit should be 10, got %d", cfg.Stats.RecentLimit)
	}

	if cfg.Display.Precision != 3 {
		t.Errorf("Default Precision should be 3, got %d", cfg.Display.Precision)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".geocalc.yaml")

	cfg := NewConfig()
	cfg.Storage.Path = "/tmp/history.db"
	cfg.Storage.RetentionDays = 30
	cfg.Stats.Timezone = "Europe/Bucharest"
	cfg.Logging.Format = "json"
	cfg.Display.Precision = 5

	if err := Save(cfg, configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if *loaded != *cfg {
		t.Errorf("loaded config differs:\n got  %+v\n want %+v", *loaded, *cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvDBPath:   "/data/geo.db",
		EnvTracking: "false",
		EnvLogLevel: "debug",
		EnvTimezone: "Asia/Tokyo",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := NewConfig()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if cfg.Storage.Path != "/data/geo.db" {
		t.Errorf("Storage.Path = %q", cfg.Storage.Path)
	}
	if cfg.Storage.Enabled {
		t.Error("Storage.Enabled should be false")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Stats.Timezone != "Asia/Tokyo" {
		t.Errorf("Stats.Timezone = %q", cfg.Stats.Timezone)
	}
}

func TestApplyEnvRejectsBadBool(t *testing.T) {
	cfg := NewConfig()
	err := cfg.ApplyEnv(func(key string) (string, bool) {
		if key == EnvTracking {
			return "maybe", true
		}
		return "", false
	})
	if err == nil {
		t.Fatal("ApplyEnv should reject a non-boolean tracking value")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".geocalc.yaml")
	cfg := NewConfig()
	cfg.Stats.Timezone = "Europe/Paris"
	if err := Save(cfg, configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv(EnvTimezone, "UTC")
	loaded, err := LoadOrDefault(configPath)
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if loaded.Stats.Timezone != "UTC" {
		t.Errorf("env should win over file, got %q", loaded.Stats.Timezone)
	}
}

func TestLoadOrDefaultWithoutFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault should fall back to defaults: %v", err)
	}
	if cfg.Display.Precision != 3 {
		t.Errorf("expected default precision, got %d", cfg.Display.Precision)
	}
}

func TestLocation(t *testing.T) {
	cfg := NewConfig()
	cfg.Stats.Timezone = ""
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("empty timezone should be UTC, got %v, %v", loc, err)
	}

	cfg.Stats.Timezone = "Nowhere/Special"
	if _, err := cfg.Location(); err == nil {
		t.Error("unknown timezone should fail")
	}
}

func TestDBPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := NewConfig()
	path, err := cfg.DBPath()
	if err != nil {
		t.Fatalf("DBPath failed: %v", err)
	}
	if path != filepath.Join(home, ".geocalc", "history.db") {
		t.Errorf("default DBPath = %q", path)
	}

	cfg.Storage.Path = "~/data/h.db"
	path, err = cfg.DBPath()
	if err != nil {
		t.Fatalf("DBPath failed: %v", err)
	}
	if path != filepath.Join(home, "data", "h.db") {
		t.Errorf("expanded DBPath = %q", path)
	}
}

func TestRetention(t *testing.T) {
	cfg := NewConfig()
	cfg.Storage.RetentionDays = 2
	if cfg.Retention() != 48*time.Hour {
		t.Errorf("Retention() = %v", cfg.Retention())
	}
}
