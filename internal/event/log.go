package event

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quayproject/quay/internal/logging"
)

var eventLog = logging.ForComponent(logging.CompEvent)

// tailWindow is how many bytes are read from the end of a log when
// resolving status. Event lines are ~100 bytes, so this always covers the
// final record plus a fallback record behind it.
const tailWindow = 1024

// LogPath returns the event log path for a session key.
func LogPath(dir, session string) string {
	return filepath.Join(dir, session+".jsonl")
}

// Append appends one event to the session's log as a single write.
// The log file is created on first append. O_APPEND keeps concurrent
// writers from interleaving within a line, which is the atomicity
// contract readers rely on.
func Append(dir, session string, e Event) error {
	if !e.Valid() {
		return fmt.Errorf("append event: invalid event (kind=%q pane=%q)", e.Kind, e.PaneRef)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create events dir: %w", err)
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(LogPath(dir, session), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Tail returns the last successfully parsed event in the log file.
// Malformed trailing lines (partial writes, corrupt JSON) are skipped in
// favor of the prior parsed record within the tail window. Returns false
// for empty, absent or wholly unparseable logs; never returns an error,
// per the resolver contract.
func Tail(path string) (Event, bool) {
	f, err := os.Open(path)
	if err != nil {
		return Event{}, false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		return Event{}, false
	}

	start := info.Size() - tailWindow
	if start < 0 {
		start = 0
	}
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return Event{}, false
	}

	reader := bufio.NewReader(f)
	if start > 0 {
		// Seeked mid-line; discard the partial first line.
		if _, err := reader.ReadString('\n'); err != nil {
			return Event{}, false
		}
	}

	var last Event
	var found bool
	for {
		line, err := reader.ReadString('\n')
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			var e Event
			if jsonErr := json.Unmarshal([]byte(trimmed), &e); jsonErr == nil && e.Valid() {
				last = e
				found = true
			}
		}
		if err != nil {
			break
		}
	}
	return last, found
}

// LatestByPane reads the tail of every event log in dir and builds a
// reverse index pane_ref -> latest event. When multiple logs reference the
// same pane (a recycled pane id), the highest timestamp wins so the
// current session's events always shadow a dead one's.
func LatestByPane(dir string) map[string]Event {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return map[string]Event{}
	}

	best := make(map[string]Event)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".jsonl" {
			continue
		}
		e, ok := Tail(filepath.Join(dir, entry.Name()))
		if !ok {
			continue
		}
		if prev, seen := best[e.PaneRef]; !seen || e.Timestamp > prev.Timestamp {
			best[e.PaneRef] = e
		}
	}
	return best
}

// PurgeForPane removes event logs whose tail references the given pane.
// Called when a window is created or killed: tmux recycles pane ids, so a
// new window must never inherit a dead session's status.
func PurgeForPane(dir, paneRef string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".jsonl" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		e, ok := Tail(path)
		if !ok || e.PaneRef != paneRef {
			continue
		}
		if err := os.Remove(path); err != nil {
			eventLog.Warn("purge_failed", slog.String("path", path), slog.String("error", err.Error()))
		} else {
			eventLog.Debug("log_purged", slog.String("path", path), slog.String("pane", paneRef))
		}
	}
}

// RemoveAll deletes every event log in dir. Used by kill-all.
func RemoveAll(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".jsonl" {
			continue
		}
		_ = os.Remove(filepath.Join(dir, entry.Name()))
	}
}

// CleanStale removes event logs not written to for maxAge. Sessions write
// on every lifecycle notification, so a log untouched for a day belongs to
// a long-dead session.
func CleanStale(dir string, maxAge time.Duration) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".jsonl" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, entry.Name()))
		}
	}
}
