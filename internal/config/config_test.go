package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Session.Name != "quay" {
		t.Errorf("Session.Name = %q, want quay", cfg.Session.Name)
	}
	if cfg.Session.PrimaryWidthPercent != 70 {
		t.Errorf("PrimaryWidthPercent = %d, want 70", cfg.Session.PrimaryWidthPercent)
	}
	if cfg.Sidebar.TickIntervalMS != 500 {
		t.Errorf("TickIntervalMS = %d, want 500", cfg.Sidebar.TickIntervalMS)
	}
	if len(cfg.Sidebar.Shells) == 0 {
		t.Error("Shells should have defaults")
	}
}

func TestReadSparseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	content := `
theme = "light"

[session]
command = "claude --continue"

[sidebar]
tick_interval_ms = 250
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if cfg.Theme != "light" {
		t.Errorf("Theme = %q, want light", cfg.Theme)
	}
	if cfg.Session.Command != "claude --continue" {
		t.Errorf("Command = %q", cfg.Session.Command)
	}
	if cfg.Sidebar.TickIntervalMS != 250 {
		t.Errorf("TickIntervalMS = %d, want 250", cfg.Sidebar.TickIntervalMS)
	}
	// Unspecified fields keep defaults
	if cfg.Session.Name != "quay" {
		t.Errorf("Session.Name = %q, want default quay", cfg.Session.Name)
	}
	if cfg.Session.PrimaryWidthPercent != 70 {
		t.Errorf("PrimaryWidthPercent = %d, want default 70", cfg.Session.PrimaryWidthPercent)
	}
}

func TestReadRejectsBadToml(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("theme = [broken"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := read(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyDefaultsClampsWidth(t *testing.T) {
	cfg := &UserConfig{}
	cfg.Session.PrimaryWidthPercent = 150
	applyDefaults(cfg)
	if cfg.Session.PrimaryWidthPercent != 70 {
		t.Errorf("PrimaryWidthPercent = %d, want clamped to 70", cfg.Session.PrimaryWidthPercent)
	}
}

func TestResolveTheme(t *testing.T) {
	cfg := Default()
	cfg.Theme = "light"
	if got := cfg.ResolveTheme(); got != "light" {
		t.Errorf("ResolveTheme = %q, want light", got)
	}
	cfg.Theme = "dark"
	if got := cfg.ResolveTheme(); got != "dark" {
		t.Errorf("ResolveTheme = %q, want dark", got)
	}
	// "system" must resolve to one of the two regardless of host OS
	cfg.Theme = "system"
	if got := cfg.ResolveTheme(); got != "dark" && got != "light" {
		t.Errorf("ResolveTheme = %q, want dark or light", got)
	}
}

func TestEventsDirOverride(t *testing.T) {
	cfg := Default()
	cfg.Events.Dir = "/tmp/custom-events"
	if got := cfg.EventsDir(); got != "/tmp/custom-events" {
		t.Errorf("EventsDir = %q", got)
	}

	cfg.Events.Dir = ""
	if got := cfg.EventsDir(); got == "" {
		t.Error("EventsDir should fall back to the default")
	}
}
