package event

import (
	"log/slog"

	"github.com/benbjohnson/clock"
)

// Writer appends lifecycle events to per-session logs. Each hook-handler
// invocation is its own short-lived process, so the writer holds no state
// beyond the target directory; O_APPEND serializes concurrent writers.
type Writer struct {
	dir   string
	clock clock.Clock
}

// NewWriter returns a writer targeting dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, clock: clock.New()}
}

// NewWriterWithClock returns a writer with an injected clock, for tests.
func NewWriterWithClock(dir string, c clock.Clock) *Writer {
	return &Writer{dir: dir, clock: c}
}

// Write appends one event for session. Failures are logged and swallowed:
// the notification source is the assistant process itself and must never
// be blocked or failed by the monitoring path. Status detection degrading
// to Fresh is the acceptable outcome.
func (w *Writer) Write(session string, kind Kind, toolName, paneRef string) {
	e := Event{
		Kind:      kind,
		ToolName:  toolName,
		PaneRef:   paneRef,
		Timestamp: w.clock.Now().UnixMilli(),
	}
	if err := Append(w.dir, session, e); err != nil {
		eventLog.Warn("event_write_failed",
			slog.String("session", session),
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
	}
}
