package event

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOfMapping(t *testing.T) {
	tests := []struct {
		name string
		e    Event
		want Status
	}{
		{"prompt submitted", Event{Kind: KindPromptSubmitted}, StatusWorking},
		{"interactive question", Event{Kind: KindToolAsked, ToolName: InteractiveTool}, StatusAsking},
		{"non-interactive tool", Event{Kind: KindToolAsked, ToolName: "Bash"}, StatusWorking},
		{"tool answered", Event{Kind: KindToolAnswered, ToolName: InteractiveTool}, StatusWorking},
		{"turn stopped", Event{Kind: KindTurnStopped}, StatusIdle},
		{"unknown kind", Event{Kind: "Bogus"}, StatusFresh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.e))
		})
	}
}

func TestResolveAbsentLogIsFresh(t *testing.T) {
	assert.Equal(t, StatusFresh, Resolve(LogPath(t.TempDir(), "missing")))
}

func TestResolveEndToEnd(t *testing.T) {
	dir := t.TempDir()
	mock := clock.NewMock()
	mock.Set(time.UnixMilli(1700000000000))
	w := NewWriterWithClock(dir, mock)
	path := LogPath(dir, "s1")

	// Scenario A: prompt -> working
	w.Write("s1", KindPromptSubmitted, "", "%1")
	require.Equal(t, StatusWorking, Resolve(path))

	// Scenario B: interactive question -> asking
	mock.Add(time.Second)
	w.Write("s1", KindToolAsked, InteractiveTool, "%1")
	require.Equal(t, StatusAsking, Resolve(path))

	// Scenario C: answer -> working, stop -> idle
	mock.Add(time.Second)
	w.Write("s1", KindToolAnswered, InteractiveTool, "%1")
	require.Equal(t, StatusWorking, Resolve(path))

	mock.Add(time.Second)
	w.Write("s1", KindTurnStopped, "", "%1")
	require.Equal(t, StatusIdle, Resolve(path))
}

func TestResolveIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	w.Write("s1", KindToolAsked, InteractiveTool, "%1")

	path := LogPath(dir, "s1")
	first := Resolve(path)
	second := Resolve(path)
	assert.Equal(t, first, second, "resolving twice without new writes must not change status")
	assert.Equal(t, StatusAsking, first)
}

func TestPromptSubmittedOverridesAnyPrior(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	path := LogPath(dir, "s1")

	priors := [][2]string{
		{string(KindToolAsked), InteractiveTool},
		{string(KindTurnStopped), ""},
		{string(KindToolAnswered), "Bash"},
	}
	for _, prior := range priors {
		w.Write("s1", Kind(prior[0]), prior[1], "%1")
		w.Write("s1", KindPromptSubmitted, "", "%1")
		assert.Equal(t, StatusWorking, Resolve(path), "PromptSubmitted after %s", prior[0])
	}
}

func TestMalformedTrailingLineKeepsPriorStatus(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	w.Write("s1", KindTurnStopped, "", "%1")

	path := LogPath(dir, "s1")
	before := Resolve(path)
	appendLine(t, path, `{"kind":"ToolAsked","tool_na`)
	assert.Equal(t, before, Resolve(path))
	assert.Equal(t, StatusIdle, before)
}

func TestWriterSilentOnUnwritableDir(t *testing.T) {
	// A file where the directory should be makes MkdirAll fail. Write must
	// swallow the error: hooks can never fail the assistant process.
	dir := t.TempDir()
	w := NewWriter(LogPath(dir, "not-a-dir"))
	appendLine(t, LogPath(dir, "not-a-dir"), "occupied")

	w.Write("s1", KindPromptSubmitted, "", "%1")
}
