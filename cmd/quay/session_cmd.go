package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/quayproject/quay/internal/config"
	"github.com/quayproject/quay/internal/event"
	"github.com/quayproject/quay/internal/registry"
	"github.com/quayproject/quay/internal/sidebar"
	"github.com/quayproject/quay/internal/tmux"
)

// Table column widths for list output
const (
	tableColName   = 20
	tableColStatus = 10
	tableColPath   = 40
)

// handleList prints the live session windows with their derived status.
// --all appends the registry's create/kill history.
func handleList(cfg *config.UserConfig, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	all := fs.Bool("all", false, "Include killed sessions from the registry")

	fs.Usage = func() {
		fmt.Println("Usage: quay list [options]")
		fmt.Println()
		fmt.Println("List session windows and their status.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if !tmux.HasSession(cfg.Session.Name) {
		fmt.Println("No session running. Start one with: quay")
	} else {
		windows, err := tmux.ListWindows(cfg.Session.Name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to list windows: %v\n", err)
			os.Exit(1)
		}
		panes, err := tmux.PrimaryPanes(cfg.Session.Name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to list panes: %v\n", err)
			os.Exit(1)
		}

		matcher := sidebar.NewMatcher(cfg.EventsDir(), cfg.Sidebar.Shells)
		rows := matcher.Resolve(windows, panes)

		fmt.Printf("%-*s %-*s %s\n", tableColName, "NAME", tableColStatus, "STATUS", "PATH")
		fmt.Println(strings.Repeat("-", tableColName+tableColStatus+tableColPath+2))
		for _, row := range rows {
			fmt.Printf("%-*s %-*s %s\n",
				tableColName, truncate(row.Window.Name, tableColName),
				tableColStatus, string(row.Status),
				truncate(row.Window.Path, tableColPath))
		}
		fmt.Printf("\nTotal: %d windows\n", len(rows))
	}

	if !*all {
		return
	}

	db, err := registry.Open(registry.DefaultPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open registry: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	sessions, err := db.List(true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read registry: %v\n", err)
		os.Exit(1)
	}
	if len(sessions) == 0 {
		return
	}

	fmt.Println("\nHistory:")
	fmt.Printf("%-*s %-*s %-16s %s\n", tableColName, "NAME", tableColPath, "PATH", "CREATED", "KILLED")
	for _, s := range sessions {
		killed := "-"
		if !s.Alive() {
			killed = s.KilledAt.Format("2006-01-02 15:04")
		}
		fmt.Printf("%-*s %-*s %-16s %s\n",
			tableColName, truncate(s.Name, tableColName),
			tableColPath, truncate(s.Dir, tableColPath),
			s.CreatedAt.Format("2006-01-02 15:04"), killed)
	}
}

// handleKill tears down one window and truncates its event log.
func handleKill(cfg *config.UserConfig, args []string) {
	if len(args) == 0 || args[0] == "" {
		fmt.Fprintln(os.Stderr, "Usage: quay kill <name>")
		os.Exit(1)
	}
	name := args[0]

	if !tmux.HasSession(cfg.Session.Name) {
		fmt.Fprintln(os.Stderr, "Error: no session running")
		os.Exit(1)
	}

	// Resolve the pane before killing so the owning event log can be
	// purged; the log is keyed by the assistant's session id, not the
	// window name, and the pane ref is the only link between them.
	pane, paneErr := tmux.PrimaryPaneID(cfg.Session.Name, name)

	if err := tmux.KillWindow(cfg.Session.Name, name); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to kill window '%s': %v\n", name, err)
		os.Exit(1)
	}
	if paneErr == nil && pane != "" {
		event.PurgeForPane(cfg.EventsDir(), pane)
	}

	if db, err := registry.Open(registry.DefaultPath()); err == nil {
		_ = db.RecordKilled(name)
		db.Close()
	}

	fmt.Printf("Killed session window: %s\n", name)
}

// handleKillAll tears down the whole session and removes all event logs.
func handleKillAll(cfg *config.UserConfig, args []string) {
	fs := flag.NewFlagSet("kill-all", flag.ExitOnError)
	force := fs.Bool("f", false, "Skip confirmation")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if !tmux.HasSession(cfg.Session.Name) {
		fmt.Println("No session running.")
		return
	}

	if !*force {
		fmt.Print("Kill all session windows? [y/N] ")
		var response string
		_, _ = fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Cancelled.")
			return
		}
	}

	if err := tmux.KillSession(cfg.Session.Name); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to kill session: %v\n", err)
		os.Exit(1)
	}
	event.RemoveAll(cfg.EventsDir())

	if db, err := registry.Open(registry.DefaultPath()); err == nil {
		_ = db.RecordAllKilled()
		db.Close()
	}

	fmt.Println("Killed all session windows.")
}

// handleResume attaches to the running session.
func handleResume(cfg *config.UserConfig) {
	if !tmux.HasSession(cfg.Session.Name) {
		fmt.Fprintln(os.Stderr, "Error: no session running. Start one with: quay")
		os.Exit(1)
	}
	if tmux.InsideTmux() {
		if err := tmux.SwitchClient(cfg.Session.Name); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to switch client: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if err := tmux.Attach(cfg.Session.Name); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to attach: %v\n", err)
		os.Exit(1)
	}
}

// truncate shortens s to max display cells with an ellipsis, never
// splitting a rune.
func truncate(s string, max int) string {
	return runewidth.Truncate(s, max, "…")
}
