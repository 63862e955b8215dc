package tmux

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/quayproject/quay/internal/event"
)

// guardInterval is the minimum spacing between corrective resizes. Every
// window-layout-changed firing runs its own short-lived quay process, so
// the damping state lives in a stamp file, not in memory.
const guardInterval = 250 * time.Millisecond

// guardTolerance absorbs the off-by-one cell that split borders cost, so
// the guard never fights tmux over a rounding difference.
const guardTolerance = 1

// guardStamp is swappable for tests.
var guardStamp = func() string {
	return filepath.Join(event.DataDir(), "resize-guard.stamp")
}

// EnforceLayout re-pins a window's primary pane to widthPct of the window
// width. The pane width is checked first: a hook firing for a layout that
// is already correct (including the one our own resize triggers) exits
// without issuing any command. Fire-and-forget: failures are logged,
// never returned.
func EnforceLayout(session, window string, widthPct int) {
	target := fmt.Sprintf("%s:%s.%s", session, window, primaryPaneIndex)

	out, err := output("display-message", "-t", target, "-p", "#{window_width} #{pane_width}")
	if err != nil {
		tmuxLog.Warn("layout_guard_query_failed",
			slog.String("target", target),
			slog.String("error", err.Error()),
		)
		return
	}
	windowWidth, paneWidth, ok := parseWidths(out)
	if !ok {
		tmuxLog.Warn("layout_guard_bad_widths", slog.String("output", out))
		return
	}

	want := targetPaneWidth(windowWidth, widthPct)
	if widthCorrect(paneWidth, want) {
		return
	}

	// A drag fires a hook per cell moved; one correction per interval is
	// enough, the next firing catches any remaining drift.
	if stampRecent(guardStamp(), guardInterval) {
		return
	}
	touchStamp(guardStamp())

	if err := run("resize-pane", "-t", target, "-x", strconv.Itoa(want)); err != nil {
		tmuxLog.Warn("layout_guard_resize_failed",
			slog.String("target", target),
			slog.Int("width", want),
			slog.String("error", err.Error()),
		)
		return
	}
	tmuxLog.Debug("layout_enforced",
		slog.String("target", target),
		slog.Int("from", paneWidth),
		slog.Int("to", want),
	)
}

// parseWidths parses "window_width pane_width" display-message output.
func parseWidths(out string) (windowWidth, paneWidth int, ok bool) {
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return 0, 0, false
	}
	windowWidth, err := strconv.Atoi(fields[0])
	if err != nil || windowWidth <= 0 {
		return 0, 0, false
	}
	paneWidth, err = strconv.Atoi(fields[1])
	if err != nil || paneWidth <= 0 {
		return 0, 0, false
	}
	return windowWidth, paneWidth, true
}

// targetPaneWidth computes the primary pane's width in cells.
func targetPaneWidth(windowWidth, widthPct int) int {
	return windowWidth * widthPct / 100
}

func widthCorrect(paneWidth, want int) bool {
	diff := paneWidth - want
	if diff < 0 {
		diff = -diff
	}
	return diff <= guardTolerance
}

// stampRecent reports whether the stamp file was touched within interval.
// A missing or unreadable stamp never throttles.
func stampRecent(path string, interval time.Duration) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < interval
}

func touchStamp(path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	f.Close()
	now := time.Now()
	_ = os.Chtimes(path, now, now)
}
