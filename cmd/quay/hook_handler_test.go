package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quayproject/quay/internal/event"
)

func TestKindForHookEvent(t *testing.T) {
	cases := []struct {
		name string
		kind event.Kind
		ok   bool
	}{
		{"UserPromptSubmit", event.KindPromptSubmitted, true},
		{"PreToolUse", event.KindToolAsked, true},
		{"PostToolUse", event.KindToolAnswered, true},
		{"Stop", event.KindTurnStopped, true},
		{"SessionStart", "", false},
		{"Notification", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		kind, ok := kindForHookEvent(tc.name)
		assert.Equal(t, tc.ok, ok, tc.name)
		assert.Equal(t, tc.kind, kind, tc.name)
	}
}

func TestHookHandlerAppendsEvent(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TMUX_PANE", "%42")

	payload := `{"hook_event_name":"UserPromptSubmit","session_id":"sess-1"}`
	handleHookHandler(strings.NewReader(payload))

	logPath := filepath.Join(home, ".quay", "events", "sess-1.jsonl")
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	e, ok := event.Tail(logPath)
	require.True(t, ok)
	assert.Equal(t, event.KindPromptSubmitted, e.Kind)
	assert.Equal(t, "%42", e.PaneRef)
	assert.Empty(t, e.ToolName)
	assert.True(t, strings.HasSuffix(string(data), "\n"))
}

func TestHookHandlerToolNameOnlyOnToolEvents(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TMUX_PANE", "%7")

	handleHookHandler(strings.NewReader(
		`{"hook_event_name":"PreToolUse","session_id":"sess-2","tool_name":"AskUserQuestion"}`))
	handleHookHandler(strings.NewReader(
		`{"hook_event_name":"Stop","session_id":"sess-2","tool_name":"AskUserQuestion"}`))

	logPath := filepath.Join(home, ".quay", "events", "sess-2.jsonl")
	e, ok := event.Tail(logPath)
	require.True(t, ok)
	assert.Equal(t, event.KindTurnStopped, e.Kind)
	assert.Empty(t, e.ToolName)
}

func TestHookHandlerSilentOnGarbage(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TMUX_PANE", "%1")

	// None of these may panic or create logs.
	handleHookHandler(strings.NewReader(""))
	handleHookHandler(strings.NewReader("{not json"))
	handleHookHandler(strings.NewReader(`{"hook_event_name":"Stop"}`))
	handleHookHandler(strings.NewReader(`{"hook_event_name":"SessionStart","session_id":"x"}`))

	entries, err := os.ReadDir(filepath.Join(home, ".quay", "events"))
	if err == nil {
		assert.Empty(t, entries)
	}
}

func TestHookHandlerIgnoredOutsideTmux(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TMUX_PANE", "")

	handleHookHandler(strings.NewReader(
		`{"hook_event_name":"UserPromptSubmit","session_id":"sess-3"}`))

	_, err := os.Stat(filepath.Join(home, ".quay", "events", "sess-3.jsonl"))
	assert.True(t, os.IsNotExist(err))
}
