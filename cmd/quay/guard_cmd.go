package main

import (
	"fmt"
	"os"

	"github.com/quayproject/quay/internal/config"
	"github.com/quayproject/quay/internal/tmux"
)

// handleResizeGuard re-pins the primary pane width for one window. tmux
// invokes it from the window-layout-changed hook, so it must stay quiet
// and must never fail loudly enough to disturb the session.
func handleResizeGuard(cfg *config.UserConfig, args []string) {
	if len(args) == 0 || args[0] == "" {
		fmt.Fprintln(os.Stderr, "Usage: quay resize-guard <window>")
		os.Exit(1)
	}
	tmux.EnforceLayout(cfg.Session.Name, args[0], cfg.Session.PrimaryWidthPercent)
}
