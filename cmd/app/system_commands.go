package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/l2obin/dekbind/cmd/app/commands"
	"github.com/l2obin/dekbind/internal/app"
	"github.com/l2obin/dekbind/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Create the key store tables of the sql drivers",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "migrations-dir",
					Value: "migrations",
					Usage: "Directory holding the postgresql, mysql and sqlite3 migrations",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(
					container.Logger(),
					cfg.DBDriver(),
					cfg.DBConnectionString,
					cmd.String("migrations-dir"),
				)
			},
		},
	}
}
