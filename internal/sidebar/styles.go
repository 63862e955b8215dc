package sidebar

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/quayproject/quay/internal/event"
)

// Color palettes, Tokyo Night and its light variant.
var darkColors = struct {
	Text, TextDim, Accent, Green, Yellow, Orange, Blue, Comment lipgloss.Color
}{
	Text:    lipgloss.Color("#c0caf5"),
	TextDim: lipgloss.Color("#787fa0"),
	Accent:  lipgloss.Color("#7aa2f7"),
	Green:   lipgloss.Color("#9ece6a"),
	Yellow:  lipgloss.Color("#e0af68"),
	Orange:  lipgloss.Color("#ff9e64"),
	Blue:    lipgloss.Color("#7dcfff"),
	Comment: lipgloss.Color("#565f89"),
}

var lightColors = struct {
	Text, TextDim, Accent, Green, Yellow, Orange, Blue, Comment lipgloss.Color
}{
	Text:    lipgloss.Color("#343b58"),
	TextDim: lipgloss.Color("#6a6d7c"),
	Accent:  lipgloss.Color("#34548a"),
	Green:   lipgloss.Color("#485e30"),
	Yellow:  lipgloss.Color("#8f5e15"),
	Orange:  lipgloss.Color("#965027"),
	Blue:    lipgloss.Color("#166775"),
	Comment: lipgloss.Color("#9699a3"),
}

var (
	titleStyle       lipgloss.Style
	rowStyle         lipgloss.Style
	rowSelectedStyle lipgloss.Style
	dimStyle         lipgloss.Style
	filterStyle      lipgloss.Style
	workingStyle     lipgloss.Style
	askingStyle      lipgloss.Style
	idleStyle        lipgloss.Style
	doneStyle        lipgloss.Style
	freshStyle       lipgloss.Style
)

// InitTheme sets the active palette. Must run before the first View.
func InitTheme(theme string) {
	c := darkColors
	if theme == "light" {
		c = lightColors
	}

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(c.Accent)
	rowStyle = lipgloss.NewStyle().Foreground(c.Text)
	rowSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(c.Accent)
	dimStyle = lipgloss.NewStyle().Foreground(c.Comment)
	filterStyle = lipgloss.NewStyle().Foreground(c.Yellow)
	workingStyle = lipgloss.NewStyle().Foreground(c.Green)
	askingStyle = lipgloss.NewStyle().Foreground(c.Orange)
	idleStyle = lipgloss.NewStyle().Foreground(c.Blue)
	doneStyle = lipgloss.NewStyle().Foreground(c.Comment)
	freshStyle = lipgloss.NewStyle().Foreground(c.TextDim)
}

// statusGlyph renders the status indicator for one row. Working uses the
// animated spinner frame passed in; the rest are static glyphs.
func statusGlyph(status event.Status, spinnerFrame string) string {
	switch status {
	case event.StatusWorking:
		return workingStyle.Render(spinnerFrame)
	case event.StatusAsking:
		return askingStyle.Render("?")
	case event.StatusIdle:
		return idleStyle.Render("●")
	case event.StatusDone:
		return doneStyle.Render("✓")
	default:
		return freshStyle.Render("○")
	}
}
