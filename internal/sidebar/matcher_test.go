package sidebar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quayproject/quay/internal/event"
	"github.com/quayproject/quay/internal/tmux"
)

var testShells = []string{"zsh", "bash", "fish"}

func TestResolveDistinguishesWindowsInSameDirectory(t *testing.T) {
	dir := t.TempDir()

	// Two sessions running in the same working directory. The window
	// identity comes from the pane ref carried in each event, never
	// from the path.
	require.NoError(t, event.Append(dir, "sess-a", event.Event{
		Kind: event.KindPromptSubmitted, PaneRef: "%11", Timestamp: 1000,
	}))
	require.NoError(t, event.Append(dir, "sess-b", event.Event{
		Kind: event.KindTurnStopped, PaneRef: "%12", Timestamp: 2000,
	}))

	windows := []tmux.Window{
		{Index: 1, Name: "api", Path: "/home/u/proj"},
		{Index: 2, Name: "web", Path: "/home/u/proj"},
	}
	panes := []tmux.Pane{
		{WindowIndex: 1, ID: "%11", Command: "claude"},
		{WindowIndex: 2, ID: "%12", Command: "claude"},
	}

	rows := NewMatcher(dir, testShells).Resolve(windows, panes)
	require.Len(t, rows, 2)
	assert.Equal(t, event.StatusWorking, rows[0].Status)
	assert.Equal(t, event.StatusIdle, rows[1].Status)
}

func TestResolveAbsentLogIsFresh(t *testing.T) {
	dir := t.TempDir()

	windows := []tmux.Window{{Index: 1, Name: "api"}}
	panes := []tmux.Pane{{WindowIndex: 1, ID: "%5", Command: "claude"}}

	rows := NewMatcher(dir, testShells).Resolve(windows, panes)
	require.Len(t, rows, 1)
	assert.Equal(t, event.StatusFresh, rows[0].Status)
	assert.Equal(t, "%5", rows[0].PaneRef)
}

func TestResolveShellForegroundIsDone(t *testing.T) {
	dir := t.TempDir()

	// Log says working, but the agent already exited back to the shell.
	// Foreground command wins.
	require.NoError(t, event.Append(dir, "sess", event.Event{
		Kind: event.KindPromptSubmitted, PaneRef: "%3", Timestamp: 1000,
	}))

	windows := []tmux.Window{{Index: 1, Name: "api"}}
	panes := []tmux.Pane{{WindowIndex: 1, ID: "%3", Command: "zsh"}}

	rows := NewMatcher(dir, testShells).Resolve(windows, panes)
	require.Len(t, rows, 1)
	assert.Equal(t, event.StatusDone, rows[0].Status)
}

func TestResolveWindowWithoutPrimaryPane(t *testing.T) {
	dir := t.TempDir()

	windows := []tmux.Window{{Index: 1, Name: "api"}, {Index: 2, Name: "web"}}
	panes := []tmux.Pane{{WindowIndex: 2, ID: "%9", Command: "claude"}}

	rows := NewMatcher(dir, testShells).Resolve(windows, panes)
	require.Len(t, rows, 2)
	assert.Equal(t, event.StatusFresh, rows[0].Status)
	assert.Empty(t, rows[0].PaneRef)
}

func TestResolveRowsSortedByWindowIndex(t *testing.T) {
	dir := t.TempDir()

	windows := []tmux.Window{
		{Index: 3, Name: "c"},
		{Index: 1, Name: "a"},
		{Index: 2, Name: "b"},
	}

	rows := NewMatcher(dir, testShells).Resolve(windows, nil)
	require.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0].Window.Index)
	assert.Equal(t, 2, rows[1].Window.Index)
	assert.Equal(t, 3, rows[2].Window.Index)
}

func TestResolvePrefersNewestEventForRecycledPane(t *testing.T) {
	dir := t.TempDir()

	// A dead session's log still references %7; the live session's
	// newer event must win.
	require.NoError(t, event.Append(dir, "old", event.Event{
		Kind: event.KindTurnStopped, PaneRef: "%7", Timestamp: 1000,
	}))
	require.NoError(t, event.Append(dir, "new", event.Event{
		Kind: event.KindPromptSubmitted, PaneRef: "%7", Timestamp: 5000,
	}))

	windows := []tmux.Window{{Index: 1, Name: "api"}}
	panes := []tmux.Pane{{WindowIndex: 1, ID: "%7", Command: "claude"}}

	rows := NewMatcher(dir, testShells).Resolve(windows, panes)
	require.Len(t, rows, 1)
	assert.Equal(t, event.StatusWorking, rows[0].Status)
}
