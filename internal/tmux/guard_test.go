package tmux

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseWidths(t *testing.T) {
	cases := []struct {
		out       string
		win, pane int
		ok        bool
	}{
		{"200 140", 200, 140, true},
		{" 80  56 ", 80, 56, true},
		{"200", 0, 0, false},
		{"200 140 7", 0, 0, false},
		{"x 140", 0, 0, false},
		{"200 y", 0, 0, false},
		{"0 140", 0, 0, false},
		{"200 0", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tc := range cases {
		win, pane, ok := parseWidths(tc.out)
		if win != tc.win || pane != tc.pane || ok != tc.ok {
			t.Errorf("parseWidths(%q) = (%d, %d, %v), want (%d, %d, %v)",
				tc.out, win, pane, ok, tc.win, tc.pane, tc.ok)
		}
	}
}

func TestTargetPaneWidth(t *testing.T) {
	if got := targetPaneWidth(200, 70); got != 140 {
		t.Errorf("targetPaneWidth(200, 70) = %d, want 140", got)
	}
	if got := targetPaneWidth(81, 70); got != 56 {
		t.Errorf("targetPaneWidth(81, 70) = %d, want 56", got)
	}
}

// The guard must not fight tmux over border rounding: anything within one
// cell of the target counts as correct and produces no resize.
func TestWidthCorrectTolerance(t *testing.T) {
	for _, pane := range []int{139, 140, 141} {
		if !widthCorrect(pane, 140) {
			t.Errorf("widthCorrect(%d, 140) = false, want true", pane)
		}
	}
	for _, pane := range []int{100, 138, 142} {
		if widthCorrect(pane, 140) {
			t.Errorf("widthCorrect(%d, 140) = true, want false", pane)
		}
	}
}

// Damping survives across guard invocations: each hook firing is its own
// process, so the only shared state is the stamp file's mtime.
func TestStampThrottlesAcrossProcesses(t *testing.T) {
	stamp := filepath.Join(t.TempDir(), "resize-guard.stamp")

	if stampRecent(stamp, time.Hour) {
		t.Fatal("missing stamp must not throttle")
	}

	touchStamp(stamp)
	if !stampRecent(stamp, time.Hour) {
		t.Error("fresh stamp should throttle the next invocation")
	}

	// Age the stamp past the interval, as a later invocation would see it.
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(stamp, old, old); err != nil {
		t.Fatal(err)
	}
	if stampRecent(stamp, time.Minute) {
		t.Error("aged stamp must not throttle")
	}
}

func TestTouchStampCreatesParentDir(t *testing.T) {
	stamp := filepath.Join(t.TempDir(), "nested", "resize-guard.stamp")
	touchStamp(stamp)
	if _, err := os.Stat(stamp); err != nil {
		t.Fatalf("stamp not created: %v", err)
	}
}
