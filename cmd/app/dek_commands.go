package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/l2obin/dekbind/cmd/app/commands"
	"github.com/l2obin/dekbind/internal/app"
	"github.com/l2obin/dekbind/internal/config"
	dekUseCase "github.com/l2obin/dekbind/internal/dek/usecase"
)

// withDekManager loads and validates the configuration, builds the container
// and hands its DEK manager to run. The container is shut down afterwards,
// which zeroizes any exposed DEK.
func withDekManager(
	ctx context.Context,
	run func(container *app.Container, manager dekUseCase.DekManager) error,
) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	container := app.NewContainer(cfg)
	defer func() { _ = container.Shutdown(context.WithoutCancel(ctx)) }()

	manager, err := container.DekManager()
	if err != nil {
		return err
	}

	return run(container, manager)
}

func getDekCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "status",
			Usage: "Show credential, client id, wrapped DEK and hmac-secret status",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withDekManager(ctx, func(container *app.Container, manager dekUseCase.DekManager) error {
					return commands.RunStatus(
						ctx,
						manager,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "create-credential",
			Usage: "Create the authenticator credential, or show the existing one",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withDekManager(ctx, func(container *app.Container, manager dekUseCase.DekManager) error {
					return commands.RunCreateCredential(
						ctx,
						manager,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "wrap",
			Usage: "Generate a DEK and wrap it under the credential-bound KEK",
			Flags: []cli.Flag{allowFallbackFlag(), formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withDekManager(ctx, func(container *app.Container, manager dekUseCase.DekManager) error {
					return commands.RunWrap(
						ctx,
						manager,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.Bool("allow-fallback"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "unwrap",
			Usage: "Unwrap the stored DEK, or the one given with --wrapped",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "wrapped",
					Aliases: []string{"w"},
					Usage:   "Base64 wrapped DEK (defaults to the one in the key store)",
				},
				&cli.BoolFlag{
					Name:  "reveal",
					Value: false,
					Usage: "Print the unwrapped DEK as base64",
				},
				allowFallbackFlag(),
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withDekManager(ctx, func(container *app.Container, manager dekUseCase.DekManager) error {
					return commands.RunUnwrap(
						ctx,
						manager,
						container.Logger(),
						commands.DefaultIO().Writer,
						commands.UnwrapOptions{
							AllowFallback: cmd.Bool("allow-fallback"),
							Wrapped:       cmd.String("wrapped"),
							Reveal:        cmd.Bool("reveal"),
						},
						cmd.String("format"),
					)
				})
			},
		},
	}
}
