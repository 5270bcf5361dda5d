package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/ticketsentry/cmd/app/commands"
	"github.com/allisson/ticketsentry/internal/app"
	"github.com/allisson/ticketsentry/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the scan API server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				if err := cfg.Validate(); err != nil {
					return err
				}
				return commands.RunServer(ctx, app.NewContainer(cfg), version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations for the configured SQL store",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.StoreDriver, cfg.DBConnectionString)
			},
		},
	}
}
