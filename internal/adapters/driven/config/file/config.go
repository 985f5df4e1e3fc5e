package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full channelsync configuration.
type Config struct {
	// DataDir is where the SQLite database lives. Empty means the
	// default under the config directory.
	DataDir string `toml:"data_dir"`

	// Scheduler tunes the recurring sync scheduler.
	Scheduler SchedulerConfig `toml:"scheduler"`

	// Platforms carries per-platform client credentials and tuning,
	// keyed by platform ID.
	Platforms map[string]PlatformConfig `toml:"platforms"`
}

// SchedulerConfig tunes the recurring sync scheduler.
type SchedulerConfig struct {
	// Enabled is the master switch for scheduled syncs.
	Enabled bool `toml:"enabled"`

	// DefaultInterval applies to tasks without an explicit interval.
	DefaultInterval time.Duration `toml:"default_interval"`
}

// PlatformConfig carries client credentials and rate tuning for one
// platform.
type PlatformConfig struct {
	// ClientID is the OAuth application client ID.
	ClientID string `toml:"client_id"`

	// ClientSecret is the OAuth application client secret.
	ClientSecret string `toml:"client_secret"`

	// RequestsPerSecond overrides the proactive pacing rate.
	RequestsPerSecond float64 `toml:"requests_per_second"`

	// Burst overrides the pacing bucket size.
	Burst int `toml:"burst"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			Enabled:         true,
			DefaultInterval: 6 * time.Hour,
		},
		Platforms: make(map[string]PlatformConfig),
	}
}

// Path returns the config file path for a config directory, resolving
// the default directory when configDir is empty.
func Path(configDir string) (string, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".channelsync")
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// Load reads the configuration from configDir, falling back to
// defaults when the file does not exist.
func Load(configDir string) (*Config, error) {
	path, err := Path(configDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Platforms == nil {
		cfg.Platforms = make(map[string]PlatformConfig)
	}
	if cfg.Scheduler.DefaultInterval <= 0 {
		cfg.Scheduler.DefaultInterval = 6 * time.Hour
	}
	return cfg, nil
}

// Save writes the configuration to configDir, creating the directory
// with owner-only permissions since it holds client secrets.
func Save(configDir string, cfg *Config) error {
	path, err := Path(configDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
