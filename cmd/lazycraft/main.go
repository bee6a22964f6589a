// Package main is the entry point for the lazycraft application.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/lazycraft/internal/app"
	"github.com/chmouel/lazycraft/internal/config"
	"github.com/chmouel/lazycraft/internal/git"
	"github.com/chmouel/lazycraft/internal/log"
	urfavecli "github.com/urfave/cli/v2"
	"golang.org/x/term"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cliApp := &urfavecli.App{
		Name:                 "lazycraft",
		Usage:                "A TUI tool to rewrite git commit history",
		Version:              version,
		EnableBashCompletion: true,

		Flags: globalFlags(),

		Action: runTUI,
	}

	if err := cliApp.Run(os.Args); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		if coder, ok := err.(urfavecli.ExitCoder); ok {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

// runTUI launches the interactive session. Exit code 0 means the rewrite
// completed or the session quit without touching the repository, 1 means a
// fatal error, 2 means the user aborted after execution had started (history
// was rolled back).
func runTUI(c *urfavecli.Context) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return urfavecli.Exit("lazycraft requires an interactive terminal", 1)
	}

	if debugLog := c.String("debug-log"); debugLog != "" {
		if err := log.SetFile(expandPath(debugLog)); err != nil {
			fmt.Fprintf(os.Stderr, "Error opening debug log file %q: %v\n", debugLog, err)
		}
	}

	cfg, err := config.LoadConfig(c.String("config-file"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	// Flag beats config for the debug log; an unset pair discards the buffer.
	if c.String("debug-log") == "" {
		if err := log.SetFile(expandPath(cfg.DebugLog)); err != nil {
			fmt.Fprintf(os.Stderr, "Error opening debug log file from config %q: %v\n", cfg.DebugLog, err)
		}
	}

	if themeName := c.String("theme"); themeName != "" {
		cfg.Theme = themeName
	}

	repoPath := c.String("repo")
	if repoPath == "" {
		repoPath, err = os.Getwd()
		if err != nil {
			_ = log.Close()
			return urfavecli.Exit(fmt.Sprintf("cannot determine working directory: %v", err), 1)
		}
	}

	svc := git.NewService(expandPath(repoPath), nil)
	svc.SetGitPager(cfg.GitPager, cfg.GitPagerArgs)

	model := app.NewModel(cfg, svc, c.Int("count"), c.Int("last"))
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err = p.Run()
	model.Close()
	if err != nil {
		_ = log.Close()
		return urfavecli.Exit(fmt.Sprintf("Error running app: %v", err), 1)
	}

	if ferr := model.Err(); ferr != nil {
		_ = log.Close()
		return urfavecli.Exit(fmt.Sprintf("lazycraft: %v", ferr), model.ExitCode())
	}

	if err := log.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing debug log: %v\n", err)
	}
	if code := model.ExitCode(); code != 0 {
		return urfavecli.Exit("", code)
	}
	return nil
}

// expandPath resolves a leading ~ to the user's home directory.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
