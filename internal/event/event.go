package event

import (
	"os"
	"path/filepath"
)

// Kind identifies a lifecycle notification emitted by a Claude Code hook.
type Kind string

const (
	// KindPromptSubmitted fires when the user sends a prompt (UserPromptSubmit).
	KindPromptSubmitted Kind = "PromptSubmitted"
	// KindToolAsked fires before a tool invocation (PreToolUse).
	KindToolAsked Kind = "ToolAsked"
	// KindToolAnswered fires after a tool invocation completes (PostToolUse).
	KindToolAnswered Kind = "ToolAnswered"
	// KindTurnStopped fires when the assistant finishes its turn (Stop).
	KindTurnStopped Kind = "TurnStopped"
)

// InteractiveTool is the tool name that blocks the assistant on user input.
// A ToolAsked event carrying this name means the session is waiting on an
// answer, not working.
const InteractiveTool = "AskUserQuestion"

// Event is one immutable fact about a session's lifecycle, stored as one
// JSON line in the session's event log.
type Event struct {
	Kind Kind `json:"kind"`
	// ToolName is set only on ToolAsked/ToolAnswered.
	ToolName string `json:"tool_name,omitempty"`
	// PaneRef is the tmux pane id (e.g. "%3") of the pane that produced the
	// notification. Pane ids are unique per physical pane for its lifetime,
	// which is what makes them safe to match on when several windows share
	// a working directory.
	PaneRef string `json:"pane_ref"`
	// Timestamp is unix milliseconds at emission.
	Timestamp int64 `json:"ts"`
}

// Valid reports whether the event has a known kind and a pane reference.
func (e Event) Valid() bool {
	switch e.Kind {
	case KindPromptSubmitted, KindToolAsked, KindToolAnswered, KindTurnStopped:
		return e.PaneRef != ""
	}
	return false
}

// Status is the derived activity state of one session. It is never stored;
// the resolver recomputes it from the log tail on every poll.
type Status string

const (
	// StatusFresh means no events have been observed yet.
	StatusFresh Status = "fresh"
	// StatusWorking means the assistant is actively processing.
	StatusWorking Status = "working"
	// StatusAsking means the assistant is blocked on an interactive question.
	StatusAsking Status = "asking"
	// StatusIdle means the assistant finished its turn and awaits a prompt.
	StatusIdle Status = "idle"
	// StatusDone means the assistant process exited (shell prompt visible).
	// Derived from pane state, not from the event log.
	StatusDone Status = "done"
)

// DataDir returns the quay data directory (~/.quay).
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".quay")
	}
	return filepath.Join(home, ".quay")
}

// EventsDir returns the directory holding per-session event logs.
func EventsDir() string {
	return filepath.Join(DataDir(), "events")
}
