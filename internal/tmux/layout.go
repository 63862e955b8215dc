package tmux

import (
	"fmt"
	"log/slog"
)

// Bootstrap describes the three-pane window layout quay creates:
// assistant on the left, sidebar top-right, scratch shell bottom-right.
type Bootstrap struct {
	// Session is the managed tmux session name.
	Session string
	// Command launches the assistant in the primary pane.
	Command string
	// SidebarCommand launches the navigator in the sidebar pane.
	SidebarCommand string
	// GuardCommand is run by the window-layout-changed hook.
	GuardCommand string
	// PrimaryWidthPercent is the primary pane's share of the window width.
	PrimaryWidthPercent int
}

// sideWidth returns the right column's width as a tmux size string.
func (b Bootstrap) sideWidth() string {
	return fmt.Sprintf("%d%%", 100-b.PrimaryWidthPercent)
}

// layoutHook returns the window-layout-changed hook body for one window.
// tmux fires the hook on any pane geometry change; the guard command
// re-pins the primary pane width, which is a no-op when already correct.
func (b Bootstrap) layoutHook(window string) string {
	return fmt.Sprintf("run-shell '%s %s'", b.GuardCommand, window)
}

// NewSession creates the session with its first window and full layout.
// One tmux invocation with chained commands so the layout appears
// atomically, the way a config-driven layout would.
func (b Bootstrap) NewSession(window, dir string) error {
	err := run(
		"new-session", "-d", "-s", b.Session, "-n", window, "-c", dir,
		";", "set-option", "-w", "remain-on-exit", "on",
		";", "set-hook", "-w", "pane-died", "respawn-pane",
		";", "split-window", "-h", "-l", b.sideWidth(), "-c", dir,
		";", "split-window", "-t", ".2", "-v", "-b", "-l", "50%", b.SidebarCommand,
		";", "respawn-pane", "-t", ".1", "-k", b.Command,
		";", "select-pane", "-t", ".1",
		";", "set-hook", "-w", "window-layout-changed", b.layoutHook(window),
	)
	if err != nil {
		return fmt.Errorf("bootstrap session: %w", err)
	}
	tmuxLog.Info("session_created", slog.String("session", b.Session), slog.String("window", window))
	return nil
}

// SetupWindow applies the layout to an already-created window (AddWindow
// starts the assistant directly, so no respawn is needed here).
func (b Bootstrap) SetupWindow(window, dir string) error {
	target := b.Session + ":" + window
	err := run(
		"set-option", "-w", "-t", target, "remain-on-exit", "on",
		";", "set-hook", "-w", "-t", target, "pane-died", "respawn-pane",
		";", "split-window", "-t", target, "-h", "-l", b.sideWidth(), "-c", dir,
		";", "split-window", "-t", target+".2", "-v", "-b", "-l", "50%", b.SidebarCommand,
		";", "select-pane", "-t", target+".1",
		";", "set-hook", "-w", "-t", target, "window-layout-changed", b.layoutHook(window),
	)
	if err != nil {
		return fmt.Errorf("setup window layout: %w", err)
	}
	return nil
}
