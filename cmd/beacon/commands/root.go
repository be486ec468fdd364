// Package commands provides the CLI command definitions for the beacon
// server.
package commands

import (
	"github.com/urfave/cli/v3"
)

// App holds the shared CLI state.
type App struct {
	Version string
	Commit  string
	Date    string
}

// New creates the root CLI command with all subcommands.
func New(version, commit, date string) *cli.Command {
	app := &App{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	return &cli.Command{
		Name:    "beacon",
		Usage:   "School alert and notification server",
		Version: version,
		Description: `Beacon delivers targeted alerts to students, parents, teachers and
administrators: emergency broadcasts, academic standing alerts, bus
tracking notifications and financial notices.`,
		Commands: []*cli.Command{
			app.serveCommand(),
			app.versionCommand(),
		},
	}
}
