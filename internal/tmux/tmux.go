package tmux

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/quayproject/quay/internal/logging"
)

var tmuxLog = logging.ForComponent(logging.CompTmux)

// queryTimeout bounds every tmux query. The sidebar polls on a sub-second
// tick, so a wedged tmux server must never stall a tick for long.
const queryTimeout = 3 * time.Second

// primaryPaneIndex is the pane running the assistant in every window.
// Panes after the bootstrap splits: 1 = assistant, 2 = sidebar, 3 = shell.
const primaryPaneIndex = "1"

// topologyGroup coalesces concurrent identical topology queries (the tick
// and an fsnotify refresh can fire together) into one subprocess.
var topologyGroup singleflight.Group

// Window describes one tmux window in the managed session.
type Window struct {
	Index  int
	Name   string
	Active bool
	// Path is the primary pane's working directory. Display only: status
	// matching goes through pane ids, never through paths.
	Path string
}

// Pane describes the primary pane of one window.
type Pane struct {
	WindowIndex int
	// ID is the tmux pane id (e.g. "%3"), unique for the pane's lifetime.
	ID string
	// Command is the pane's foreground command.
	Command string
}

// output runs a tmux command and returns trimmed stdout.
func output(args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "tmux", args...)
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("tmux %s: timed out", args[0])
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("tmux %s: %s", args[0], strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("tmux %s: %w", args[0], err)
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// run runs a tmux command discarding output.
func run(args ...string) error {
	_, err := output(args...)
	return err
}

// runInteractive runs tmux attached to the caller's terminal, for
// attach-session and similar commands that take over the tty.
func runInteractive(args ...string) error {
	cmd := exec.Command("tmux", args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("tmux %s: %w", args[0], err)
	}
	return nil
}

// IsAvailable reports whether the tmux binary works.
func IsAvailable() error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "tmux", "-V").CombinedOutput()
	if err != nil {
		return fmt.Errorf("tmux not found or not working: %w (output: %s)", err, string(out))
	}
	return nil
}

// InsideTmux reports whether we are running inside a tmux client.
func InsideTmux() bool {
	return os.Getenv("TMUX") != ""
}

// CurrentPane returns the pane id of the calling process, from the
// $TMUX_PANE environment variable tmux sets in every pane.
func CurrentPane() string {
	return os.Getenv("TMUX_PANE")
}

// HasSession reports whether the named session exists.
func HasSession(session string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	return exec.CommandContext(ctx, "tmux", "has-session", "-t", session).Run() == nil
}

// ListWindows returns the windows of the managed session.
func ListWindows(session string) ([]Window, error) {
	v, err, _ := topologyGroup.Do("windows:"+session, func() (any, error) {
		out, err := output("list-windows", "-t", session, "-F",
			"#{window_index}|#{window_name}|#{window_active}|#{pane_current_path}")
		if err != nil {
			return nil, err
		}
		return parseWindows(out), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Window), nil
}

// parseWindows parses list-windows output into Window values.
// Malformed lines are skipped.
func parseWindows(out string) []Window {
	var windows []Window
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(line, "|", 4)
		if len(parts) < 4 {
			continue
		}
		index, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		windows = append(windows, Window{
			Index:  index,
			Name:   parts[1],
			Active: parts[2] == "1",
			Path:   parts[3],
		})
	}
	return windows
}

// ListWindowNames returns window names only, for duplicate checks.
func ListWindowNames(session string) ([]string, error) {
	out, err := output("list-windows", "-t", session, "-F", "#{window_name}")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// PrimaryPanes returns the primary (assistant) pane of every window in the
// session: one list-panes call instead of one query per window.
func PrimaryPanes(session string) ([]Pane, error) {
	v, err, _ := topologyGroup.Do("panes:"+session, func() (any, error) {
		out, err := output("list-panes", "-s", "-t", session, "-F",
			"#{window_index}|#{pane_index}|#{pane_current_command}|#{pane_id}")
		if err != nil {
			return nil, err
		}
		return parsePrimaryPanes(out), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Pane), nil
}

// parsePrimaryPanes parses list-panes output, keeping only the primary
// pane of each window.
func parsePrimaryPanes(out string) []Pane {
	var panes []Pane
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(line, "|", 4)
		if len(parts) < 4 {
			continue
		}
		if parts[1] != primaryPaneIndex {
			continue
		}
		index, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		panes = append(panes, Pane{
			WindowIndex: index,
			Command:     parts[2],
			ID:          parts[3],
		})
	}
	return panes
}

// PrimaryPaneID returns the pane id of a window's primary pane.
func PrimaryPaneID(session, window string) (string, error) {
	target := fmt.Sprintf("%s:%s.%s", session, window, primaryPaneIndex)
	out, err := output("display-message", "-t", target, "-p", "#{pane_id}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// SelectWindow switches the attached client to a window and focuses its
// primary pane.
func SelectWindow(session string, index int) error {
	target := fmt.Sprintf("%s:%d", session, index)
	if err := run("select-window", "-t", target); err != nil {
		return err
	}
	return run("select-pane", "-t", target+"."+primaryPaneIndex)
}

// Attach attaches the calling terminal to the session.
func Attach(session string) error {
	return runInteractive("attach-session", "-t", session)
}

// SwitchClient switches the current tmux client to the session.
func SwitchClient(session string) error {
	return run("switch-client", "-t", session)
}

// KillWindow kills one window by name.
func KillWindow(session, name string) error {
	return run("kill-window", "-t", session+":"+name)
}

// KillSession kills the whole session.
func KillSession(session string) error {
	return run("kill-session", "-t", session)
}

// nextWindowIndex picks the first unused index. remain-on-exit keeps dead
// windows around, so tmux's automatic index choice can collide.
func nextWindowIndex(session string) (int, error) {
	windows, err := ListWindows(session)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, w := range windows {
		if w.Index > max {
			max = w.Index
		}
	}
	return max + 1, nil
}

// AddWindow creates a new window running command, returning its index.
func AddWindow(session, name, dir, command string) (int, error) {
	index, err := nextWindowIndex(session)
	if err != nil {
		return 0, err
	}
	target := fmt.Sprintf("%s:%d", session, index)
	if err := run("new-window", "-t", target, "-n", name, "-c", dir, command); err != nil {
		return 0, err
	}
	tmuxLog.Info("window_created",
		slog.String("session", session),
		slog.String("name", name),
		slog.Int("index", index),
	)
	return index, nil
}
