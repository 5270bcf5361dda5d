package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/allisson/ticketsentry/cmd/app/commands"
	"github.com/allisson/ticketsentry/internal/app"
	"github.com/allisson/ticketsentry/internal/config"
	"github.com/allisson/ticketsentry/internal/emulator"
	ticketService "github.com/allisson/ticketsentry/internal/ticket/service"
)

// withContainer loads and validates configuration, then runs fn with a
// container that is shut down afterwards.
func withContainer(ctx context.Context, fn func(*app.Container) error) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	container := app.NewContainer(cfg)
	defer func() { _ = container.Shutdown(ctx) }()
	return fn(container)
}

func providerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "payout-file",
			Usage: "File with one 8-digit payout per line (default: random payouts)",
		},
		&cli.StringFlag{
			Name:  "security-file",
			Usage: "File with one 'PIDHEX KEYHEX IVHEX' triplet per line (default: random triplets)",
		},
	}
}

func getTicketCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "issue",
			Usage: "Pair a fresh printer and print its pairing code and redemption codes",
			Flags: append([]cli.Flag{
				&cli.StringFlag{
					Name:    "serial",
					Aliases: []string{"s"},
					Value:   "000000001",
					Usage:   "9-digit printer serial number",
				},
				&cli.IntFlag{
					Name:    "count",
					Aliases: []string{"n"},
					Value:   1,
					Usage:   "Number of redemption codes to print",
				},
				formatFlag(),
			}, providerFlags()...),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					payouts, security, err := loadCommandProviders(cmd)
					if err != nil {
						return err
					}
					issuer, err := container.NewIssuer(cmd.String("serial"), payouts, security)
					if err != nil {
						return err
					}
					return commands.RunIssue(
						ctx,
						issuer,
						container.Logger(),
						commands.DefaultIO().Writer,
						int(cmd.Int("count")),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:      "pair",
			Usage:     "Store the printer keys carried by pairing codes",
			ArgsUsage: "<pairing-code>...",
			Flags:     []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					validator, err := container.ValidatorUseCase()
					if err != nil {
						return err
					}
					return commands.RunPair(
						ctx,
						validator,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.Args().Slice(),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:      "validate",
			Usage:     "Validate redemption codes against the configured store",
			ArgsUsage: "<redemption-code>...",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:    "pairing-code",
					Aliases: []string{"p"},
					Usage:   "Pairing code to pair before validating (repeatable)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					validator, err := container.ValidatorUseCase()
					if err != nil {
						return err
					}
					return commands.RunValidate(
						ctx,
						validator,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.StringSlice("pairing-code"),
						cmd.Args().Slice(),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:      "parse",
			Usage:     "Describe pairing or redemption codes without validating them",
			ArgsUsage: "<code>...",
			Flags:     []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				if cmd.Args().Len() == 0 {
					return errors.New("at least one code is required")
				}
				return commands.RunParse(commands.DefaultIO().Writer, cmd.Args().Slice(), cmd.String("format"))
			},
		},
		{
			Name:  "scan",
			Usage: "Read codes from standard input, one per line, and describe them",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "redeem",
					Usage: "Also pair pairing codes and validate redemption codes against the configured store",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					if !cmd.Bool("redeem") {
						return commands.RunScan(ctx, nil, container.Logger(), commands.DefaultIO())
					}
					validator, err := container.ValidatorUseCase()
					if err != nil {
						return err
					}
					return commands.RunScan(ctx, validator, container.Logger(), commands.DefaultIO())
				})
			},
		},
		{
			Name:  "emulate",
			Usage: "Run a fleet of emulated printers against one validator",
			Flags: append([]cli.Flag{
				&cli.IntFlag{Name: "iterations", Aliases: []string{"i"}, Value: 10000, Usage: "Tickets to issue"},
				&cli.IntFlag{Name: "printers", Aliases: []string{"p"}, Value: 1000, Usage: "Fleet size"},
				&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Value: 4, Usage: "Concurrent scanners"},
				&cli.Uint64Flag{Name: "seed", Value: 1, Usage: "Seed for printer choice and random providers"},
				&cli.BoolFlag{Name: "random-clock", Usage: "Stamp tickets with random times"},
				&cli.IntFlag{Name: "clock-from-year", Value: 2000, Usage: "First year of the random clock"},
				&cli.IntFlag{Name: "clock-to-year", Value: 2100, Usage: "Year the random clock stops before"},
				&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Usage: "Directory for generated code files"},
				&cli.BoolFlag{Name: "fail-on-error", Usage: "Abort on the first invalid or duplicate ticket"},
				&cli.BoolFlag{
					Name:  "use-store",
					Usage: "Validate against the configured store instead of a private in-memory one",
				},
				formatFlag(),
			}, providerFlags()...),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					return runEmulate(ctx, cmd, container)
				})
			},
		},
	}
}

func runEmulate(ctx context.Context, cmd *cli.Command, container *app.Container) error {
	payouts, security, err := loadCommandProviders(cmd)
	if err != nil {
		return err
	}
	businessMetrics, err := container.BusinessMetrics()
	if err != nil {
		return err
	}

	cfg := emulator.Config{
		Iterations:    int(cmd.Int("iterations")),
		Printers:      int(cmd.Int("printers")),
		Workers:       int(cmd.Int("workers")),
		Seed:          cmd.Uint64("seed"),
		TimestampMode: container.Config().TimestampMode,
		RandomClock:   cmd.Bool("random-clock"),
		ClockFromYear: int(cmd.Int("clock-from-year")),
		ClockToYear:   int(cmd.Int("clock-to-year")),
		Payouts:       payouts,
		Security:      security,
		OutputDir:     cmd.String("output-dir"),
		FailOnError:   cmd.Bool("fail-on-error"),
		Metrics:       businessMetrics,
	}
	if cmd.Bool("use-store") {
		validator, err := container.ValidatorUseCase()
		if err != nil {
			return fmt.Errorf("failed to get validator: %w", err)
		}
		cfg.Validator = validator
	}

	return commands.RunEmulate(ctx, cfg, container.Logger(), commands.DefaultIO().Writer, cmd.String("format"))
}

func loadCommandProviders(
	cmd *cli.Command,
) (ticketService.PayoutProvider, ticketService.SecurityProvider, error) {
	return commands.LoadProviders(cmd.String("payout-file"), cmd.String("security-file"))
}
