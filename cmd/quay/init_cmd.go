package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/quayproject/quay/internal/hooks"
)

// handleInit installs the Claude Code lifecycle hooks that feed the
// event logs. Idempotent; re-run after moving the binary.
func handleInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	remove := fs.Bool("remove", false, "Remove quay's hooks instead of installing them")

	fs.Usage = func() {
		fmt.Println("Usage: quay init [options]")
		fmt.Println()
		fmt.Println("Install quay's lifecycle hooks into Claude Code's settings.json.")
		fmt.Println("Hooks from other tools are left untouched.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	settings := hooks.SettingsPath()

	if *remove {
		changed, err := hooks.Remove(settings)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to remove hooks: %v\n", err)
			os.Exit(1)
		}
		if changed {
			fmt.Printf("Removed quay hooks from %s\n", settings)
		} else {
			fmt.Println("No quay hooks installed.")
		}
		return
	}

	bin := hooks.BinaryPath()
	changed, err := hooks.Install(settings, bin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to install hooks: %v\n", err)
		os.Exit(1)
	}
	if changed {
		fmt.Printf("Installed quay hooks into %s\n", settings)
		fmt.Println("Restart running Claude Code sessions to pick them up.")
	} else {
		fmt.Println("Hooks already installed and current.")
	}
}
