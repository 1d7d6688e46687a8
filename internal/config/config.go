// Package config loads the foogie TOML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all foogie configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Sync       SyncConfig       `toml:"sync"`
	Backend    BackendConfig    `toml:"backend"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Log        LogConfig        `toml:"log"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds storage preferences.
type GeneralConfig struct {
	DBPath string `toml:"db_path,omitempty"`
}

// SyncConfig controls the meal notification sent after each logged meal.
type SyncConfig struct {
	Enabled    bool   `toml:"enabled"`
	Endpoint   string `toml:"endpoint,omitempty"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// BackendConfig points at the recipe/inventory backend.
type BackendConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
	BinID   string `toml:"bin_id,omitempty"`
}

// DaemonConfig holds the local HTTP daemon settings.
type DaemonConfig struct {
	Addr            string   `toml:"addr"`
	PollIntervalSec int      `toml:"poll_interval_sec"`
	EventsBuffer    int      `toml:"events_buffer"`
	AllowOrigins    []string `toml:"allow_origins,omitempty"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file,omitempty"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Sync: SyncConfig{
			Enabled:    true,
			TimeoutSec: 10,
		},
		Daemon: DaemonConfig{
			Addr:            "127.0.0.1:8788",
			PollIntervalSec: 15,
			EventsBuffer:    200,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 30,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "foogie")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "foogie")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads the config at path over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveFile(Path(), cfg)
}

// SaveFile writes cfg to path, creating its directory.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// BackendURL returns the backend base URL from env var or config, in that order.
func BackendURL(cfg Config) string {
	if u := os.Getenv("FOOGIE_BACKEND_URL"); u != "" {
		return u
	}
	return cfg.Backend.BaseURL
}

// SyncEndpoint resolves the meal-sync URL: env var, then the configured
// endpoint, then the backend's calorie-tracker route.
func SyncEndpoint(cfg Config) string {
	if u := os.Getenv("FOOGIE_SYNC_URL"); u != "" {
		return u
	}
	if cfg.Sync.Endpoint != "" {
		return cfg.Sync.Endpoint
	}
	if base := BackendURL(cfg); base != "" {
		return strings.TrimRight(base, "/") + "/api/calorie-tracker"
	}
	return ""
}

// SyncTimeout returns the per-notification timeout.
func SyncTimeout(cfg Config) time.Duration {
	if cfg.Sync.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(cfg.Sync.TimeoutSec) * time.Second
}
