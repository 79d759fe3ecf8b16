// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for gymsync configuration.
	DefaultConfigDir = ".gymsync"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	SQLite  SQLiteConfig  `yaml:"sqlite,omitempty"`
	Source  SourceConfig  `yaml:"source,omitempty"`
	Portal  PortalConfig  `yaml:"portal,omitempty"`
	Sync    SyncConfig    `yaml:"sync,omitempty"`
	Cache   CacheConfig   `yaml:"cache,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite event store.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database.
	Path string `yaml:"path,omitempty"`
}

// SourceConfig holds configuration for the collector API that serves
// scraped listings.
type SourceConfig struct {
	BaseURL        string `yaml:"base_url,omitempty"`
	APIKey         string `yaml:"api_key,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// PortalConfig describes how public event URLs are derived.
type PortalConfig struct {
	// URLTemplate takes a gym slug and a listing ID.
	URLTemplate string `yaml:"url_template,omitempty"`
	// GymSlugs maps gym IDs to their portal slugs. The key set doubles as
	// the list of gyms to sync.
	GymSlugs map[string]string `yaml:"gym_slugs,omitempty"`
}

// SyncConfig holds the orchestrator tunables.
type SyncConfig struct {
	FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds,omitempty"`
	RetryDelaySeconds   int `yaml:"retry_delay_seconds,omitempty"`
	// MaxDeletions and MaxDeletedRatio are the deletion guard thresholds.
	MaxDeletions    int     `yaml:"max_deletions,omitempty"`
	MaxDeletedRatio float64 `yaml:"max_deleted_ratio,omitempty"`
}

// CacheConfig holds configuration for the in-memory read cache.
type CacheConfig struct {
	TTLSeconds int `yaml:"ttl_seconds,omitempty"`
}

// MetricsConfig holds configuration for the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables the endpoint.
	Addr string `yaml:"addr,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			TimeoutSeconds: 30,
		},
		Portal: PortalConfig{
			URLTemplate: "https://portal.iclasspro.com/%s/camp-details/%d",
		},
		Sync: SyncConfig{
			FetchTimeoutSeconds: 60,
			RetryDelaySeconds:   5,
			MaxDeletions:        5,
			MaxDeletedRatio:     0.5,
		},
		Cache: CacheConfig{
			TTLSeconds: 300,
		},
	}
}

// Load loads configuration from the .gymsync directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'gymsync init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	cfg.applyEnvOverrides()

	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = filepath.Join(ConfigDir(basePath), "gymsync.db")
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GYMSYNC_API_KEY"); key != "" && c.Source.APIKey == "" {
		c.Source.APIKey = key
	}
	if url := os.Getenv("GYMSYNC_SOURCE_URL"); url != "" {
		c.Source.BaseURL = url
	}
	if path := os.Getenv("GYMSYNC_DB_PATH"); path != "" {
		c.SQLite.Path = path
	}
	if addr := os.Getenv("GYMSYNC_METRICS_ADDR"); addr != "" {
		c.Metrics.Addr = addr
	}
}

// GymIDs returns the configured gym IDs in sorted order.
func (c *Config) GymIDs() []string {
	ids := make([]string, 0, len(c.Portal.GymSlugs))
	for id := range c.Portal.GymSlugs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FetchTimeout returns the fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Sync.FetchTimeoutSeconds) * time.Second
}

// RetryDelay returns the retry delay as a duration.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Sync.RetryDelaySeconds) * time.Second
}

// CacheTTL returns the cache time-to-live as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// ConfigDir returns the path to the .gymsync config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// Exists checks if a gymsync config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}

// Write persists the config as YAML, creating the config directory if
// needed.
func Write(basePath string, cfg *Config) error {
	dir := ConfigDir(basePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigFilePath(basePath), data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
