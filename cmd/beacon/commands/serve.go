package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/campushq/beacon/internal/app"
)

// serveCommand returns the serve subcommand, which runs the HTTP server
// until interrupted.
func (a *App) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the beacon server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Value:   "config.toml",
				Sources: cli.EnvVars("BEACON_CONFIG"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			application, err := app.New(app.Options{
				ConfigPath: cmd.String("config"),
				Version:    a.Version,
			})
			if err != nil {
				return err
			}

			if err := application.Initialize(ctx); err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- application.Start()
			}()

			select {
			case err := <-errCh:
				application.Shutdown(context.Background())
				return err
			case <-ctx.Done():
				return application.Shutdown(context.Background())
			}
		},
	}
}
