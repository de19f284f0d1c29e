package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadFrom_MissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v for missing file", err)
	}
	if cfg != Default() {
		t.Errorf("LoadFrom() = %+v, want defaults", cfg)
	}
}

func TestLoadFrom_FullConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
poll_interval = "1m"
idle_delay = "250ms"
recent_count = 5
persist_cache = false
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.PollInterval.Std() != time.Minute {
		t.Errorf("PollInterval = %s, want 1m", cfg.PollInterval.Std())
	}
	if cfg.IdleDelay.Std() != 250*time.Millisecond {
		t.Errorf("IdleDelay = %s, want 250ms", cfg.IdleDelay.Std())
	}
	if cfg.RecentCount != 5 {
		t.Errorf("RecentCount = %d, want 5", cfg.RecentCount)
	}
	if cfg.PersistCache {
		t.Error("PersistCache = true, want false")
	}
}

func TestLoadFrom_PartialConfigKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `recent_count = 3`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.RecentCount != 3 {
		t.Errorf("RecentCount = %d, want 3", cfg.RecentCount)
	}
	if cfg.PollInterval != Default().PollInterval {
		t.Errorf("PollInterval = %s, want default", cfg.PollInterval.Std())
	}
	if !cfg.PersistCache {
		t.Error("PersistCache = false, want default true")
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "bad toml", content: `poll_interval = [`},
		{name: "bad duration", content: `poll_interval = "soon"`},
		{name: "poll interval too small", content: `poll_interval = "10ms"`},
		{name: "negative recent count", content: `recent_count = -1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeConfig(t, tt.content)
			if _, err := LoadFrom(path); err == nil {
				t.Error("LoadFrom() error = nil, want validation error")
			}
		})
	}
}
