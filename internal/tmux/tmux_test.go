package tmux

import (
	"testing"
)

func TestParseWindows(t *testing.T) {
	out := "1|api|1|/home/u/api\n2|web|0|/home/u/web\n3|name|with|pipes|0|/x"

	windows := parseWindows(out)
	if len(windows) != 3 {
		t.Fatalf("len = %d, want 3", len(windows))
	}

	if windows[0].Index != 1 || windows[0].Name != "api" || !windows[0].Active {
		t.Errorf("unexpected first window: %+v", windows[0])
	}
	if windows[1].Active {
		t.Error("second window should be inactive")
	}
	// SplitN(4) folds pipes in the path field, never in index/name
	if windows[2].Name != "name" || windows[2].Path != "pipes|0|/x" {
		t.Errorf("unexpected third window: %+v", windows[2])
	}
}

func TestParseWindowsSkipsMalformed(t *testing.T) {
	out := "garbage\nnot-a-number|x|0|/p\n2|ok|0|/p"

	windows := parseWindows(out)
	if len(windows) != 1 {
		t.Fatalf("len = %d, want 1", len(windows))
	}
	if windows[0].Name != "ok" {
		t.Errorf("Name = %q, want ok", windows[0].Name)
	}
}

func TestParsePrimaryPanes(t *testing.T) {
	out := "1|1|claude|%0\n" +
		"1|2|quay|%1\n" +
		"1|3|zsh|%2\n" +
		"2|1|zsh|%5\n" +
		"2|2|quay|%6"

	panes := parsePrimaryPanes(out)
	if len(panes) != 2 {
		t.Fatalf("len = %d, want 2 (primary panes only)", len(panes))
	}

	if panes[0].WindowIndex != 1 || panes[0].ID != "%0" || panes[0].Command != "claude" {
		t.Errorf("unexpected first pane: %+v", panes[0])
	}
	if panes[1].WindowIndex != 2 || panes[1].ID != "%5" || panes[1].Command != "zsh" {
		t.Errorf("unexpected second pane: %+v", panes[1])
	}
}

func TestParsePrimaryPanesEmpty(t *testing.T) {
	if panes := parsePrimaryPanes(""); len(panes) != 0 {
		t.Errorf("expected no panes, got %+v", panes)
	}
}

func TestBootstrapSideWidth(t *testing.T) {
	b := Bootstrap{PrimaryWidthPercent: 70}
	if got := b.sideWidth(); got != "30%" {
		t.Errorf("sideWidth = %q, want 30%%", got)
	}
}

func TestBootstrapLayoutHook(t *testing.T) {
	b := Bootstrap{GuardCommand: "/usr/local/bin/quay resize-guard"}
	hook := b.layoutHook("api")
	want := "run-shell '/usr/local/bin/quay resize-guard api'"
	if hook != want {
		t.Errorf("layoutHook = %q, want %q", hook, want)
	}
}
