package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration. Secrets (the
// database DSN and the internal sync secret) are deliberately kept out
// of this file and read from the environment instead.
type Config struct {
	// Listen is the HTTP listen address for the serving layer.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used for schedule evaluation
	// (e.g. "America/Los_Angeles").
	Timezone string `yaml:"timezone" json:"timezone"`

	// SyncCron is a cron-style schedule string for the periodic sync
	// run (e.g. "*/14 * * * *").
	SyncCron string `yaml:"sync_cron" json:"sync_cron"`

	// FeedTimeoutSeconds bounds a single feed fetch so a hung feed
	// cannot stall the whole run indefinitely.
	FeedTimeoutSeconds int `yaml:"feed_timeout_seconds" json:"feed_timeout_seconds"`

	// CacheTTLSeconds is the TTL for cached serving-layer responses.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds" json:"cache_ttl_seconds"`

	// HorizonDays is how far ahead recurring feed entries are projected
	// when picking their next occurrence.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// RosterFile is an optional bootstrap roster of {name, url} pairs
	// used by seed mode. Scheduled runs read the club table instead.
	RosterFile string `yaml:"roster_file" json:"roster_file"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:             "127.0.0.1:4000",
		Timezone:           "America/Los_Angeles",
		SyncCron:           "*/14 * * * *",
		FeedTimeoutSeconds: 15,
		CacheTTLSeconds:    120,
		HorizonDays:        90,
		RosterFile:         "",
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:4000"
	}
	if c.Timezone == "" {
		c.Timezone = "America/Los_Angeles"
	}
	if c.SyncCron == "" {
		c.SyncCron = "*/14 * * * *"
	}
	if c.FeedTimeoutSeconds <= 0 {
		c.FeedTimeoutSeconds = 15
	}
	if c.CacheTTLSeconds <= 0 {
		c.CacheTTLSeconds = 120
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = 90
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written there
//     (parent directory created, 0600 perms) and returned.
//   - If the file exists, it is unmarshaled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file + rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".clubsync-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
