package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/quayproject/quay/internal/config"
	"github.com/quayproject/quay/internal/event"
	"github.com/quayproject/quay/internal/hooks"
	"github.com/quayproject/quay/internal/logging"
	"github.com/quayproject/quay/internal/registry"
	"github.com/quayproject/quay/internal/tmux"
)

// handleStart is the default command: create a session window (and the
// tmux session with it when absent), or resume when called bare with a
// session already running.
func handleStart(cfg *config.UserConfig, args []string) {
	if err := tmux.IsAvailable(); err != nil {
		fmt.Fprintln(os.Stderr, "Error: tmux not found in PATH")
		fmt.Fprintln(os.Stderr, "\nquay requires tmux. Install with your package manager, e.g.:")
		fmt.Fprintln(os.Stderr, "  brew install tmux")
		os.Exit(1)
	}

	if len(args) > 0 && strings.HasPrefix(args[0], "-") {
		fmt.Fprintf(os.Stderr, "Error: unknown flag %s\n\n", args[0])
		printHelp()
		os.Exit(1)
	}

	// Bare invocation with a running deck just reattaches.
	if len(args) == 0 && tmux.HasSession(cfg.Session.Name) {
		handleResume(cfg)
		return
	}

	var name, dir string
	switch len(args) {
	case 0:
	case 1:
		name = args[0]
	case 2:
		name, dir = args[0], args[1]
	default:
		fmt.Fprintln(os.Stderr, "Usage: quay [name] [dir]")
		os.Exit(1)
	}

	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to get current directory: %v\n", err)
			os.Exit(1)
		}
	} else {
		var err error
		dir, err = filepath.Abs(dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to resolve path: %v\n", err)
			os.Exit(1)
		}
	}
	info, err := os.Stat(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: path does not exist: %s\n", dir)
		os.Exit(1)
	}
	if !info.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: path is not a directory: %s\n", dir)
		os.Exit(1)
	}

	if name == "" {
		name = filepath.Base(dir)
	}
	name = sanitizeWindowName(name)
	if name == "" {
		name = cfg.Session.DefaultWindow
	}

	nudgeHooks()

	bin := hooks.BinaryPath()
	boot := tmux.Bootstrap{
		Session:             cfg.Session.Name,
		Command:             cfg.Session.Command,
		SidebarCommand:      bin + " sidebar",
		GuardCommand:        bin + " resize-guard",
		PrimaryWidthPercent: cfg.Session.PrimaryWidthPercent,
	}

	created := !tmux.HasSession(cfg.Session.Name)
	if created {
		if err := boot.NewSession(name, dir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create session: %v\n", err)
			os.Exit(1)
		}
	} else {
		names, err := tmux.ListWindowNames(cfg.Session.Name)
		if err == nil && lo.Contains(names, name) {
			fmt.Fprintf(os.Stderr, "Error: window '%s' already exists (quay resume to attach, or pick another name)\n", name)
			os.Exit(1)
		}
		if _, err := tmux.AddWindow(cfg.Session.Name, name, dir, cfg.Session.Command); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create window: %v\n", err)
			os.Exit(1)
		}
		if err := boot.SetupWindow(name, dir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to set up window layout: %v\n", err)
			os.Exit(1)
		}
	}

	// tmux recycles pane ids. Drop any old log whose tail points at the
	// pane this window just received, so it starts Fresh.
	pane, err := tmux.PrimaryPaneID(cfg.Session.Name, name)
	if err == nil && pane != "" {
		event.PurgeForPane(cfg.EventsDir(), pane)
	}

	recordCreated(name, dir, pane)

	fmt.Printf("Started session window: %s (%s)\n", name, dir)
	if tmux.InsideTmux() {
		if err := tmux.SwitchClient(cfg.Session.Name); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to switch client: %v\n", err)
		}
		return
	}
	if err := tmux.Attach(cfg.Session.Name); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to attach: %v\n", err)
		os.Exit(1)
	}
}

// sanitizeWindowName strips characters tmux treats as target separators,
// plus quotes: the window name is spliced into the single-quoted
// window-layout-changed hook command.
func sanitizeWindowName(name string) string {
	name = strings.TrimSpace(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', '.', '\'', '"', ';', '\t', '\n':
			return '-'
		}
		return r
	}, name)
}

// nudgeHooks reminds the user to run `quay init` when the Claude Code
// hooks are missing or point at a moved binary. Sessions still launch;
// their windows just stay Fresh until the hooks report in.
func nudgeHooks() {
	settings := hooks.SettingsPath()
	bin := hooks.BinaryPath()
	if hooks.Installed(settings, bin) {
		return
	}
	if hooks.Stale(settings, bin) {
		fmt.Fprintln(os.Stderr, "Note: Claude Code hooks point at an old quay binary. Run 'quay init' to fix.")
		return
	}
	fmt.Fprintln(os.Stderr, "Note: Claude Code hooks are not installed; statuses will not update. Run 'quay init'.")
}

// recordCreated stores bootstrap metadata in the registry. Failure is
// logged, never fatal: the registry only feeds `quay list --all`.
func recordCreated(name, dir, pane string) {
	db, err := registry.Open(registry.DefaultPath())
	if err != nil {
		logging.ForComponent(logging.CompDB).Warn("registry_open_failed", slog.String("error", err.Error()))
		return
	}
	defer db.Close()
	if err := db.RecordCreated(name, dir, pane); err != nil {
		logging.ForComponent(logging.CompDB).Warn("registry_write_failed", slog.String("error", err.Error()))
	}
}
