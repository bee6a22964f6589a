// Package main provides CLI flag definitions for lazycraft.
package main

import (
	urfavecli "github.com/urfave/cli/v2"
)

// globalFlags returns all global flags for the application.
// Note: --version is provided automatically by urfave/cli via App.Version
func globalFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.IntFlag{
			Name:    "count",
			Aliases: []string{"n"},
			Usage:   "Number of commits to load into the window",
		},
		&urfavecli.IntFlag{
			Name:  "last",
			Usage: "Pre-select the last N commits",
		},
		&urfavecli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Path to the repository (defaults to the working directory)",
		},
		&urfavecli.StringFlag{
			Name:    "theme",
			Aliases: []string{"t"},
			Usage:   "Override the UI theme",
		},
		&urfavecli.StringFlag{
			Name:  "debug-log",
			Usage: "Path to debug log file",
		},
		&urfavecli.StringFlag{
			Name:  "config-file",
			Usage: "Path to configuration file",
		},
	}
}
