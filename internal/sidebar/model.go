package sidebar

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"golang.org/x/time/rate"

	"github.com/quayproject/quay/internal/config"
	"github.com/quayproject/quay/internal/event"
	"github.com/quayproject/quay/internal/tmux"
)

// cleanInterval is how often stale event logs are swept during ticks.
const cleanInterval = 10 * time.Minute

type tickMsg time.Time

// refreshMsg arrives when the events-dir watcher sees a write.
type refreshMsg struct{}

// topologyMsg carries a freshly resolved window list.
type topologyMsg struct {
	rows []Row
	err  error
}

// switchDoneMsg reports the outcome of a window switch.
type switchDoneMsg struct{ err error }

// Model is the sidebar navigator: a single cooperative loop that
// re-resolves every window's status each tick and redraws in place.
type Model struct {
	session    string
	matcher    *Matcher
	watcher    *DirWatcher
	eventsDir  string
	tick       time.Duration
	staleAfter time.Duration

	// refreshLimit caps watcher-driven re-resolves: a hook burst that
	// outruns the watcher debounce still costs at most a few topology
	// queries, and the tick picks up anything skipped.
	refreshLimit *rate.Limiter

	spin   spinner.Model
	rows   []Row
	cursor int
	width  int
	height int

	filtering bool
	filter    string

	topologyErr error
	lastClean   time.Time
	quitting    bool
}

// New builds the sidebar model from user config. watcher may be nil, in
// which case the sidebar runs on the tick alone.
func New(cfg *config.UserConfig, watcher *DirWatcher) Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = workingStyle

	return Model{
		session:      cfg.Session.Name,
		matcher:      NewMatcher(cfg.EventsDir(), cfg.Sidebar.Shells),
		watcher:      watcher,
		eventsDir:    cfg.EventsDir(),
		tick:         time.Duration(cfg.Sidebar.TickIntervalMS) * time.Millisecond,
		staleAfter:   time.Duration(cfg.Events.StaleAfterHours) * time.Hour,
		refreshLimit: rate.NewLimiter(rate.Every(200*time.Millisecond), 2),
		spin:         s,
		lastClean:    time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick, m.scheduleTick(), m.resolve()}
	if m.watcher != nil {
		cmds = append(cmds, m.waitRefresh())
	}
	return tea.Batch(cmds...)
}

func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitRefresh blocks on the watcher channel and converts signals to msgs.
func (m Model) waitRefresh() tea.Cmd {
	ch := m.watcher.Refresh()
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return refreshMsg{}
	}
}

// resolve queries the multiplexer topology and re-derives every status.
// Always a fresh computation from the log tails; nothing carries over
// from the previous tick.
func (m Model) resolve() tea.Cmd {
	session := m.session
	matcher := m.matcher
	return func() tea.Msg {
		windows, err := tmux.ListWindows(session)
		if err != nil {
			return topologyMsg{err: err}
		}
		panes, err := tmux.PrimaryPanes(session)
		if err != nil {
			return topologyMsg{err: err}
		}
		return topologyMsg{rows: matcher.Resolve(windows, panes)}
	}
}

// switchTo issues the window-switch command.
func (m Model) switchTo(index int) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		return switchDoneMsg{err: tmux.SelectWindow(session, index)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tickMsg:
		if time.Since(m.lastClean) >= cleanInterval {
			m.lastClean = time.Now()
			event.CleanStale(m.eventsDir, m.staleAfter)
		}
		return m, tea.Batch(m.scheduleTick(), m.resolve())

	case refreshMsg:
		var cmds []tea.Cmd
		if m.watcher != nil {
			cmds = append(cmds, m.waitRefresh())
		}
		if m.refreshLimit.Allow() {
			cmds = append(cmds, m.resolve())
		}
		return m, tea.Batch(cmds...)

	case topologyMsg:
		if msg.err != nil {
			// Windows we cannot see this tick are absent from the redraw;
			// the next tick retries. The monitored sessions are untouched.
			m.topologyErr = msg.err
			m.rows = nil
			m.cursor = 0
			sidebarLog.Warn("topology_query_failed", slog.String("error", msg.err.Error()))
			return m, nil
		}
		m.topologyErr = nil
		m.rows = msg.rows
		m.clampCursor()
		return m, nil

	case switchDoneMsg:
		if msg.err != nil {
			sidebarLog.Warn("window_switch_failed", slog.String("error", msg.err.Error()))
		}
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilterKey(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case "enter":
		if row, ok := m.selected(); ok {
			return m, m.switchTo(row.Window.Index)
		}
	case "/":
		m.filtering = true
		m.filter = ""
		m.cursor = 0
	}
	return m, nil
}

func (m Model) updateFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filter = ""
		m.clampCursor()
	case "enter":
		if row, ok := m.selected(); ok {
			m.filtering = false
			m.filter = ""
			return m, m.switchTo(row.Window.Index)
		}
		m.filtering = false
		m.filter = ""
	case "backspace":
		if len(m.filter) > 0 {
			_, size := utf8.DecodeLastRuneInString(m.filter)
			m.filter = m.filter[:len(m.filter)-size]
		}
		m.clampCursor()
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	default:
		if msg.Type == tea.KeyRunes {
			m.filter += string(msg.Runes)
			m.cursor = 0
		}
	}
	return m, nil
}

// visible returns the rows after fuzzy filtering on window names.
func (m Model) visible() []Row {
	if m.filter == "" {
		return m.rows
	}
	names := lo.Map(m.rows, func(r Row, _ int) string { return r.Window.Name })
	matches := fuzzy.Find(m.filter, names)
	filtered := make([]Row, 0, len(matches))
	for _, match := range matches {
		filtered = append(filtered, m.rows[match.Index])
	}
	return filtered
}

func (m Model) selected() (Row, bool) {
	rows := m.visible()
	if len(rows) == 0 || m.cursor >= len(rows) {
		return Row{}, false
	}
	return rows[m.cursor], true
}

func (m *Model) clampCursor() {
	if n := len(m.visible()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("quay"))
	b.WriteString("\n\n")

	rows := m.visible()
	if len(rows) == 0 {
		if m.topologyErr != nil {
			b.WriteString(dimStyle.Render("tmux unavailable, retrying…"))
		} else if m.filter != "" {
			b.WriteString(dimStyle.Render("no matches"))
		} else {
			b.WriteString(dimStyle.Render("no sessions"))
		}
		b.WriteString("\n")
	}

	nameWidth := m.width - 5
	if nameWidth < 8 {
		nameWidth = 8
	}

	for i, row := range rows {
		prefix := "  "
		style := rowStyle
		if i == m.cursor {
			prefix = "❯ "
			style = rowSelectedStyle
		}

		name := runewidth.Truncate(row.Window.Name, nameWidth, "…")
		line := fmt.Sprintf("%s%s %s", prefix, statusGlyph(row.Status, m.spin.View()), style.Render(name))
		if row.Window.Active {
			line += dimStyle.Render(" *")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.filtering {
		b.WriteString(filterStyle.Render("/" + m.filter))
	} else {
		b.WriteString(dimStyle.Render("↑↓ move · ⏎ switch · / filter · q quit"))
	}
	return b.String()
}

// Run starts the sidebar and blocks until quit.
func Run() error {
	cfg := config.Load()
	InitTheme(cfg.ResolveTheme())

	watcher, err := NewDirWatcher(cfg.EventsDir())
	if err != nil {
		sidebarLog.Warn("watcher_unavailable", slog.String("error", err.Error()))
		watcher = nil
	} else {
		go watcher.Start()
		defer watcher.Stop()
	}

	p := tea.NewProgram(New(cfg, watcher), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("sidebar: %w", err)
	}
	return nil
}
