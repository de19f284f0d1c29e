// Package config loads the drift configuration from
// ~/.config/drift/config.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration wraps time.Duration for TOML parsing ("30s", "2m", ...).
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler so written configs
// round-trip through UnmarshalText.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds the drift configuration.
type Config struct {
	// PollInterval is how often the watch view requests a new round of
	// comparisons.
	PollInterval Duration `toml:"poll_interval"`

	// IdleDelay is the pause between background comparisons, keeping git
	// invocations off the interactive path.
	IdleDelay Duration `toml:"idle_delay"`

	// RecentCount bounds how many recently active branches are prioritized
	// in each scheduling round.
	RecentCount int `toml:"recent_count"`

	// PersistCache stores computed results in .git/drift-cache.json so the
	// next session starts warm.
	PersistCache bool `toml:"persist_cache"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		PollInterval: Duration(30 * time.Second),
		IdleDelay:    Duration(100 * time.Millisecond),
		RecentCount:  10,
		PersistCache: true,
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "drift", "config.toml"), nil
}

// Load reads config from ~/.config/drift/config.toml.
// Returns Default() if the file doesn't exist (no error).
// Returns an error only if the file exists but is invalid.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from an explicit path.
func LoadFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.PollInterval.Std() < time.Second {
		return fmt.Errorf("poll_interval %s too small: must be at least 1s", c.PollInterval.Std())
	}
	if c.IdleDelay.Std() < 0 {
		return fmt.Errorf("idle_delay must not be negative")
	}
	if c.RecentCount < 0 {
		return fmt.Errorf("recent_count must not be negative")
	}
	return nil
}
