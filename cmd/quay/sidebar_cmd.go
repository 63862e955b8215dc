package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/quayproject/quay/internal/sidebar"
	"github.com/quayproject/quay/internal/tmux"
)

// handleSidebar runs the navigator. Meant to be spawned by the layout
// bootstrap inside its own pane, but runs in any terminal for debugging.
func handleSidebar() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: sidebar needs a terminal")
		os.Exit(1)
	}
	if err := tmux.IsAvailable(); err != nil {
		fmt.Fprintln(os.Stderr, "Error: tmux not found in PATH")
		os.Exit(1)
	}
	if err := sidebar.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
