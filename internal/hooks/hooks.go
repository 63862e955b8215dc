// Package hooks installs quay's lifecycle hooks into Claude Code's
// settings.json. The four entries make Claude call `quay hook-handler` on
// prompt submit, turn stop, and around the interactive question tool;
// that handler is the event-log ingestion entry point.
package hooks

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/quayproject/quay/internal/logging"
)

var hooksLog = logging.ForComponent(logging.CompHooks)

// handlerSubcommand marks quay hook entries in settings.json, regardless
// of where the binary lives.
const handlerSubcommand = " hook-handler"

// hookEntry is a single hook command in Claude Code settings.
type hookEntry struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Async   bool   `json:"async,omitempty"`
	Timeout int    `json:"timeout,omitempty"`
}

// hookMatcher is a matcher block in Claude Code settings.
type hookMatcher struct {
	Matcher string      `json:"matcher,omitempty"`
	Hooks   []hookEntry `json:"hooks"`
}

// eventConfigs lists the Claude Code events quay subscribes to. PreToolUse
// and PostToolUse are scoped to the interactive question tool: other tool
// invocations carry no status information the resolver needs.
var eventConfigs = []struct {
	Event   string
	Matcher string // empty = all
}{
	{Event: "UserPromptSubmit"},
	{Event: "Stop"},
	{Event: "PreToolUse", Matcher: "AskUserQuestion"},
	{Event: "PostToolUse", Matcher: "AskUserQuestion"},
}

// SettingsPath returns Claude Code's settings.json path, honoring
// CLAUDE_CONFIG_DIR.
func SettingsPath() string {
	if dir := os.Getenv("CLAUDE_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, "settings.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".claude", "settings.json")
	}
	return filepath.Join(home, ".claude", "settings.json")
}

// BinaryPath returns the absolute path of the running binary, for hook
// commands that must work without quay on PATH.
func BinaryPath() string {
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			return resolved
		}
		return exe
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "bin", "quay")
}

func handlerEntry(bin string) hookEntry {
	return hookEntry{
		Type:    "command",
		Command: bin + handlerSubcommand,
		Async:   true,
		Timeout: 5,
	}
}

// Install injects quay hook entries into settings.json, preserving all
// existing settings and user hooks. Entries pointing at a stale binary
// path are replaced. Returns true if the file was modified.
func Install(settingsPath, bin string) (bool, error) {
	var rawSettings map[string]json.RawMessage
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return false, fmt.Errorf("read settings.json: %w", err)
		}
		rawSettings = make(map[string]json.RawMessage)
	} else {
		if err := json.Unmarshal(data, &rawSettings); err != nil {
			return false, fmt.Errorf("parse settings.json: %w", err)
		}
	}

	existingHooks := make(map[string]json.RawMessage)
	if raw, ok := rawSettings["hooks"]; ok {
		if err := json.Unmarshal(raw, &existingHooks); err != nil {
			existingHooks = make(map[string]json.RawMessage)
		}
	}

	if installed(existingHooks, bin) {
		return false, nil
	}

	for _, cfg := range eventConfigs {
		existingHooks[cfg.Event] = mergeEvent(existingHooks[cfg.Event], cfg.Matcher, bin)
	}

	hooksRaw, err := json.Marshal(existingHooks)
	if err != nil {
		return false, fmt.Errorf("marshal hooks: %w", err)
	}
	rawSettings["hooks"] = hooksRaw

	if err := writeSettings(settingsPath, rawSettings); err != nil {
		return false, err
	}

	hooksLog.Info("hooks_installed", slog.String("path", settingsPath), slog.String("bin", bin))
	return true, nil
}

// Remove strips quay hook entries from settings.json. Returns true if any
// were removed.
func Remove(settingsPath string) (bool, error) {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read settings.json: %w", err)
	}

	var rawSettings map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawSettings); err != nil {
		return false, fmt.Errorf("parse settings.json: %w", err)
	}

	hooksRaw, ok := rawSettings["hooks"]
	if !ok {
		return false, nil
	}
	var existingHooks map[string]json.RawMessage
	if err := json.Unmarshal(hooksRaw, &existingHooks); err != nil {
		return false, nil
	}

	removed := false
	for event, raw := range existingHooks {
		cleaned, didRemove := stripOurs(raw)
		if !didRemove {
			continue
		}
		removed = true
		if cleaned == nil {
			delete(existingHooks, event)
		} else {
			existingHooks[event] = cleaned
		}
	}
	if !removed {
		return false, nil
	}

	if len(existingHooks) == 0 {
		delete(rawSettings, "hooks")
	} else {
		hooksData, _ := json.Marshal(existingHooks)
		rawSettings["hooks"] = hooksData
	}

	if err := writeSettings(settingsPath, rawSettings); err != nil {
		return false, err
	}

	hooksLog.Info("hooks_removed", slog.String("path", settingsPath))
	return true, nil
}

// Installed checks whether all quay hooks are present and point at bin.
func Installed(settingsPath, bin string) bool {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return false
	}
	var rawSettings map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawSettings); err != nil {
		return false
	}
	hooksRaw, ok := rawSettings["hooks"]
	if !ok {
		return false
	}
	var existingHooks map[string]json.RawMessage
	if err := json.Unmarshal(hooksRaw, &existingHooks); err != nil {
		return false
	}
	return installed(existingHooks, bin)
}

// Stale reports whether quay hooks exist but point at a binary other than
// bin (after a move or reinstall).
func Stale(settingsPath, bin string) bool {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return false
	}
	content := string(data)
	return strings.Contains(content, handlerSubcommand) &&
		!strings.Contains(content, bin+handlerSubcommand)
}

func installed(hooks map[string]json.RawMessage, bin string) bool {
	want := bin + handlerSubcommand
	for _, cfg := range eventConfigs {
		raw, ok := hooks[cfg.Event]
		if !ok {
			return false
		}
		var matchers []hookMatcher
		if err := json.Unmarshal(raw, &matchers); err != nil {
			return false
		}
		found := false
		for _, m := range matchers {
			for _, h := range m.Hooks {
				if h.Command == want {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// mergeEvent adds our handler to an event's matcher array, preserving
// everything else. Existing quay entries (possibly with a stale binary
// path) are replaced.
func mergeEvent(existing json.RawMessage, matcher, bin string) json.RawMessage {
	var matchers []hookMatcher
	if existing != nil {
		if err := json.Unmarshal(existing, &matchers); err != nil {
			matchers = nil
		}
	}

	// Drop prior quay entries first so stale binary paths are replaced
	matchers, _ = stripMatchers(matchers)

	for i, m := range matchers {
		if m.Matcher == matcher {
			matchers[i].Hooks = append(matchers[i].Hooks, handlerEntry(bin))
			result, _ := json.Marshal(matchers)
			return result
		}
	}

	matchers = append(matchers, hookMatcher{
		Matcher: matcher,
		Hooks:   []hookEntry{handlerEntry(bin)},
	})
	result, _ := json.Marshal(matchers)
	return result
}

// stripOurs removes quay entries from an event's raw matcher array.
// Returns nil JSON when nothing survives.
func stripOurs(raw json.RawMessage) (json.RawMessage, bool) {
	var matchers []hookMatcher
	if err := json.Unmarshal(raw, &matchers); err != nil {
		return raw, false
	}

	cleaned, removed := stripMatchers(matchers)
	if !removed {
		return raw, false
	}
	if len(cleaned) == 0 {
		return nil, true
	}
	result, _ := json.Marshal(cleaned)
	return result, true
}

// stripMatchers filters quay handler entries out of matcher blocks,
// dropping blocks left empty.
func stripMatchers(matchers []hookMatcher) ([]hookMatcher, bool) {
	removed := false
	var cleaned []hookMatcher
	for _, m := range matchers {
		var kept []hookEntry
		for _, h := range m.Hooks {
			if strings.HasSuffix(h.Command, handlerSubcommand) {
				removed = true
				continue
			}
			kept = append(kept, h)
		}
		if len(kept) > 0 {
			m.Hooks = kept
			cleaned = append(cleaned, m)
		}
	}
	return cleaned, removed
}

// writeSettings writes settings.json atomically.
func writeSettings(path string, settings map[string]json.RawMessage) error {
	finalData, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, finalData, 0644); err != nil {
		return fmt.Errorf("write settings.json.tmp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename settings.json: %w", err)
	}
	return nil
}
