package sidebar

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/quayproject/quay/internal/logging"
)

var sidebarLog = logging.ForComponent(logging.CompSidebar)

// DirWatcher watches the events directory and delivers coalesced refresh
// signals. It only accelerates the sidebar between ticks; resolution
// still always goes through the same resolve-from-tail path, so a lost
// notification costs at most one tick of latency.
type DirWatcher struct {
	dir     string
	watcher *fsnotify.Watcher
	ch      chan struct{}
	done    chan struct{}
}

// NewDirWatcher creates a watcher for dir. Call Start in a goroutine.
func NewDirWatcher(dir string) (*DirWatcher, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &DirWatcher{
		dir:     dir,
		watcher: watcher,
		ch:      make(chan struct{}, 1),
		done:    make(chan struct{}),
	}, nil
}

// Refresh returns the channel carrying refresh signals. The channel is
// buffered with size one; bursts coalesce into a single signal.
func (w *DirWatcher) Refresh() <-chan struct{} {
	return w.ch
}

// Start begins watching. Blocks until Stop is called.
func (w *DirWatcher) Start() {
	if err := w.watcher.Add(w.dir); err != nil {
		sidebarLog.Warn("dir_watch_failed", slog.String("dir", w.dir), slog.String("error", err.Error()))
		return
	}

	// Debounce: hook bursts (ToolAsked directly after PromptSubmitted)
	// collapse into one refresh.
	var debounce *time.Timer

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(ev.Name) != ".jsonl" {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(50*time.Millisecond, func() {
				select {
				case w.ch <- struct{}{}:
				default:
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			sidebarLog.Warn("dir_watch_error", slog.String("error", err.Error()))
		}
	}
}

// Stop shuts the watcher down.
func (w *DirWatcher) Stop() {
	close(w.done)
	_ = w.watcher.Close()
}
