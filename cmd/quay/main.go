package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/quayproject/quay/internal/config"
	"github.com/quayproject/quay/internal/event"
	"github.com/quayproject/quay/internal/logging"
)

const Version = "0.3.1"

func init() {
	initColorProfile()
}

// initColorProfile configures lipgloss based on terminal capabilities.
// QUAY_COLOR overrides detection: truecolor, 256, 16, none.
func initColorProfile() {
	if colorEnv := os.Getenv("QUAY_COLOR"); colorEnv != "" {
		switch strings.ToLower(colorEnv) {
		case "truecolor", "true", "24bit":
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		case "256", "ansi256":
			lipgloss.SetColorProfile(termenv.ANSI256)
			return
		case "16", "ansi", "basic":
			lipgloss.SetColorProfile(termenv.ANSI)
			return
		case "none", "off", "ascii":
			lipgloss.SetColorProfile(termenv.Ascii)
			return
		}
	}

	if colorTerm := os.Getenv("COLORTERM"); colorTerm == "truecolor" || colorTerm == "24bit" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	// tmux-256color is the common case here since the sidebar lives
	// inside the session it monitors.
	term := os.Getenv("TERM")
	for _, t := range []string{"tmux-256color", "xterm-256color", "screen-256color", "alacritty", "kitty", "wezterm"} {
		if strings.Contains(term, t) {
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		}
	}

	lipgloss.SetColorProfile(termenv.ANSI256)
}

// initLogging sets up rotated JSONL debug logs under the data dir.
// Outside debug mode everything is discarded so the panes stay clean.
func initLogging(cfg *config.UserConfig) {
	debug := cfg.Logs.Debug || os.Getenv("QUAY_DEBUG") != ""
	logDir := ""
	if debug {
		logDir = event.DataDir()
	}
	logging.Init(logging.Config{
		Debug:      debug,
		LogDir:     logDir,
		Level:      cfg.Logs.Level,
		Format:     cfg.Logs.Format,
		MaxSizeMB:  cfg.Logs.MaxSizeMB,
		MaxBackups: 3,
		MaxAgeDays: 10,
	})
}

func main() {
	cfg := config.Load()
	initLogging(cfg)
	defer logging.Shutdown()

	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "version", "--version", "-v":
			fmt.Printf("quay v%s\n", Version)
			return
		case "help", "--help", "-h":
			printHelp()
			return
		case "list", "ls":
			handleList(cfg, args[1:])
			return
		case "kill":
			handleKill(cfg, args[1:])
			return
		case "kill-all":
			handleKillAll(cfg, args[1:])
			return
		case "resume":
			handleResume(cfg)
			return
		case "init":
			handleInit(args[1:])
			return
		case "sidebar":
			handleSidebar()
			return
		case "hook-handler":
			handleHookHandler(os.Stdin)
			return
		case "resize-guard":
			handleResizeGuard(cfg, args[1:])
			return
		}
	}

	// No subcommand: start a session window (or resume the deck).
	handleStart(cfg, args)
}

func printHelp() {
	fmt.Println("Usage: quay [name] [dir]")
	fmt.Println()
	fmt.Println("Run Claude Code sessions side by side in one tmux session,")
	fmt.Println("with a live status sidebar per window.")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  quay [name] [dir]    Start a session window (default: current dir name)")
	fmt.Println("  quay list [--all]    List session windows (--all includes killed)")
	fmt.Println("  quay kill <name>     Kill a session window and its event log")
	fmt.Println("  quay kill-all        Kill the whole session")
	fmt.Println("  quay resume          Attach to the running session")
	fmt.Println("  quay init            Install Claude Code hooks (required once)")
	fmt.Println("  quay version         Print version")
	fmt.Println()
	fmt.Println("Internal commands (invoked by tmux and Claude Code hooks):")
	fmt.Println("  quay sidebar")
	fmt.Println("  quay hook-handler")
	fmt.Println("  quay resize-guard <window>")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  quay                         # window named after the current dir")
	fmt.Println("  quay api ~/src/api           # named window in another dir")
	fmt.Println("  quay list --all")
}
