package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	dark "github.com/thiagokokada/dark-mode-go"

	"github.com/quayproject/quay/internal/event"
)

// FileName is the TOML config file for user preferences.
const FileName = "config.toml"

// UserConfig represents user-facing configuration in TOML format.
type UserConfig struct {
	// Theme sets the color scheme: "dark" (default), "light", or "system"
	Theme string `toml:"theme"`

	// Session defines tmux session bootstrap settings
	Session SessionSettings `toml:"session"`

	// Sidebar defines navigator pane settings
	Sidebar SidebarSettings `toml:"sidebar"`

	// Events defines event log settings
	Events EventSettings `toml:"events"`

	// Logs defines debug log settings
	Logs LogSettings `toml:"logs"`
}

// SessionSettings defines tmux session bootstrap settings.
type SessionSettings struct {
	// Name is the tmux session all windows live in
	Name string `toml:"name"`

	// DefaultWindow is the window name used when none is given
	DefaultWindow string `toml:"default_window"`

	// Command is the assistant command launched in the primary pane
	Command string `toml:"command"`

	// PrimaryWidthPercent is the primary pane's share of the window width
	PrimaryWidthPercent int `toml:"primary_width_percent"`
}

// SidebarSettings defines navigator pane settings.
type SidebarSettings struct {
	// TickIntervalMS is the redraw/poll interval in milliseconds
	TickIntervalMS int `toml:"tick_interval_ms"`

	// Shells are foreground commands treated as "assistant exited"
	Shells []string `toml:"shells"`
}

// EventSettings defines event log settings.
type EventSettings struct {
	// Dir overrides the event log directory (default ~/.quay/events)
	Dir string `toml:"dir"`

	// StaleAfterHours is the age after which untouched logs are removed
	StaleAfterHours int `toml:"stale_after_hours"`
}

// LogSettings defines debug log settings.
type LogSettings struct {
	Debug     bool   `toml:"debug"`
	Level     string `toml:"level"`
	Format    string `toml:"format"`
	MaxSizeMB int    `toml:"max_size_mb"`
}

// Default returns a config with all defaults applied.
func Default() *UserConfig {
	return &UserConfig{
		Theme: "dark",
		Session: SessionSettings{
			Name:                "quay",
			DefaultWindow:       "session",
			Command:             "claude",
			PrimaryWidthPercent: 70,
		},
		Sidebar: SidebarSettings{
			TickIntervalMS: 500,
			Shells:         []string{"zsh", "bash", "fish"},
		},
		Events: EventSettings{
			StaleAfterHours: 24,
		},
		Logs: LogSettings{
			Level:  "info",
			Format: "json",
		},
	}
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(event.DataDir(), FileName)
}

var (
	cached   *UserConfig
	cachedMu sync.RWMutex
	loadOnce sync.Once
)

// Load returns the cached user config, reading it from disk on first call.
// A missing or unreadable file yields defaults; config problems never fail
// the caller.
func Load() *UserConfig {
	loadOnce.Do(func() {
		cfg, err := read(Path())
		if err != nil {
			cfg = Default()
		}
		cachedMu.Lock()
		cached = cfg
		cachedMu.Unlock()
	})

	cachedMu.RLock()
	defer cachedMu.RUnlock()
	return cached
}

// Reload re-reads the config from disk, replacing the cache.
func Reload() *UserConfig {
	cfg, err := read(Path())
	if err != nil {
		cfg = Default()
	}
	cachedMu.Lock()
	cached = cfg
	cachedMu.Unlock()
	return cfg
}

// read parses a config file and fills in defaults for missing fields.
func read(path string) (*UserConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// applyDefaults fills zero values so a sparse config file still works.
func applyDefaults(cfg *UserConfig) {
	def := Default()
	if cfg.Theme == "" {
		cfg.Theme = def.Theme
	}
	if cfg.Session.Name == "" {
		cfg.Session.Name = def.Session.Name
	}
	if cfg.Session.DefaultWindow == "" {
		cfg.Session.DefaultWindow = def.Session.DefaultWindow
	}
	if cfg.Session.Command == "" {
		cfg.Session.Command = def.Session.Command
	}
	if cfg.Session.PrimaryWidthPercent <= 0 || cfg.Session.PrimaryWidthPercent >= 100 {
		cfg.Session.PrimaryWidthPercent = def.Session.PrimaryWidthPercent
	}
	if cfg.Sidebar.TickIntervalMS <= 0 {
		cfg.Sidebar.TickIntervalMS = def.Sidebar.TickIntervalMS
	}
	if len(cfg.Sidebar.Shells) == 0 {
		cfg.Sidebar.Shells = def.Sidebar.Shells
	}
	if cfg.Events.StaleAfterHours <= 0 {
		cfg.Events.StaleAfterHours = def.Events.StaleAfterHours
	}
	if cfg.Logs.Level == "" {
		cfg.Logs.Level = def.Logs.Level
	}
	if cfg.Logs.Format == "" {
		cfg.Logs.Format = def.Logs.Format
	}
}

// Save writes the config to disk atomically.
func Save(cfg *UserConfig) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}

	cachedMu.Lock()
	cached = cfg
	cachedMu.Unlock()
	return nil
}

// EventsDir resolves the event log directory from config.
func (c *UserConfig) EventsDir() string {
	if c.Events.Dir != "" {
		return c.Events.Dir
	}
	return event.EventsDir()
}

// ResolveTheme maps theme "system" to "dark" or "light" via the OS
// appearance setting. Detection failures fall back to dark.
func (c *UserConfig) ResolveTheme() string {
	if c.Theme != "system" {
		return c.Theme
	}
	isDark, err := dark.IsDarkMode()
	if err != nil || isDark {
		return "dark"
	}
	return "light"
}
