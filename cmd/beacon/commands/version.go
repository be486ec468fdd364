package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// versionCommand returns the version subcommand.
func (a *App) versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print version information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Printf("beacon %s (commit %s, built %s)\n", a.Version, a.Commit, a.Date)
			return nil
		},
	}
}
