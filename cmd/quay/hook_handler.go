package main

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/quayproject/quay/internal/config"
	"github.com/quayproject/quay/internal/event"
	"github.com/quayproject/quay/internal/logging"
	"github.com/quayproject/quay/internal/tmux"
)

// hookPayload is the subset of Claude Code's hook JSON we consume.
type hookPayload struct {
	HookEventName string `json:"hook_event_name"`
	SessionID     string `json:"session_id"`
	ToolName      string `json:"tool_name"`
}

// kindForHookEvent maps a Claude Code hook event name to an event kind.
func kindForHookEvent(name string) (event.Kind, bool) {
	switch name {
	case "UserPromptSubmit":
		return event.KindPromptSubmitted, true
	case "PreToolUse":
		return event.KindToolAsked, true
	case "PostToolUse":
		return event.KindToolAnswered, true
	case "Stop":
		return event.KindTurnStopped, true
	}
	return "", false
}

// handleHookHandler ingests one hook payload from stdin and appends one
// event. It never fails: a broken payload or unwritable log must not
// surface to the assistant, so every exit path is a silent success.
func handleHookHandler(in io.Reader) {
	log := logging.ForComponent(logging.CompHooks)

	raw, err := io.ReadAll(io.LimitReader(in, 1<<20))
	if err != nil {
		log.Warn("hook_payload_read_failed", slog.String("error", err.Error()))
		return
	}

	var payload hookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Warn("hook_payload_malformed", slog.String("error", err.Error()))
		return
	}

	kind, ok := kindForHookEvent(payload.HookEventName)
	if !ok {
		log.Debug("hook_event_ignored", slog.String("event", payload.HookEventName))
		return
	}
	if payload.SessionID == "" {
		log.Warn("hook_payload_missing_session")
		return
	}

	pane := tmux.CurrentPane()
	if pane == "" {
		// Session runs outside tmux; nothing to navigate to.
		log.Debug("hook_outside_tmux", slog.String("session", payload.SessionID))
		return
	}

	toolName := ""
	if kind == event.KindToolAsked || kind == event.KindToolAnswered {
		toolName = payload.ToolName
	}

	event.NewWriter(config.Load().EventsDir()).Write(payload.SessionID, kind, toolName, pane)
}
