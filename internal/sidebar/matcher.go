package sidebar

import (
	"sort"

	"github.com/samber/lo"

	"github.com/quayproject/quay/internal/event"
	"github.com/quayproject/quay/internal/tmux"
)

// Row is one window with its resolved status, ready to render.
type Row struct {
	Window  tmux.Window
	PaneRef string
	Status  event.Status
}

// Matcher maps windows to statuses. Rebuilt state every call: nothing is
// cached across ticks, so a crashed or restarted sidebar resolves the
// same statuses as one that never went down.
type Matcher struct {
	eventsDir string
	shells    map[string]bool
}

// NewMatcher returns a matcher reading logs from eventsDir. Panes whose
// foreground command is in shells are reported Done (assistant exited).
func NewMatcher(eventsDir string, shells []string) *Matcher {
	return &Matcher{
		eventsDir: eventsDir,
		shells:    lo.SliceToMap(shells, func(s string) (string, bool) { return s, true }),
	}
}

// Resolve derives a status row per window. Matching goes through the
// primary pane's id: the log tail that references the pane id wins,
// letting two windows with identical working directories resolve
// independently. A window with no matching log is Fresh.
func (m *Matcher) Resolve(windows []tmux.Window, panes []tmux.Pane) []Row {
	paneByWindow := lo.KeyBy(panes, func(p tmux.Pane) int { return p.WindowIndex })
	latest := event.LatestByPane(m.eventsDir)

	rows := make([]Row, 0, len(windows))
	for _, w := range windows {
		row := Row{Window: w, Status: event.StatusFresh}
		if p, ok := paneByWindow[w.Index]; ok {
			row.PaneRef = p.ID
			switch {
			case m.shells[p.Command]:
				row.Status = event.StatusDone
			default:
				if e, ok := latest[p.ID]; ok {
					row.Status = event.StatusOf(e)
				}
			}
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Window.Index < rows[j].Window.Index
	})
	return rows
}
