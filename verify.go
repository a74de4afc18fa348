package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"cutover/config"
	"cutover/verify"
)

var errCountMismatch = errors.New("row counts differ between local and remote")

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "compare row counts of the local and remote databases",
		ArgsUsage: "[url]",
		Flags: []cli.Flag{
			remoteURLFlag(),
			&cli.StringFlag{
				Name:  "container",
				Usage: "name of the running database container",
			},
			&cli.StringSliceFlag{
				Name:  "table",
				Usage: "table to compare (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "direct",
				Usage: "query the remote database directly instead of through the container client",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.FromContext(ctx)
			target, err := remoteTarget(cmd, cfg)
			if err != nil {
				return err
			}

			tables := cfg.Verify.Tables
			if cmd.IsSet("table") {
				tables = cmd.StringSlice("table")
			}

			container := localContainer(cfg, cmd)
			local := verify.NewLocalCounter(container, localDB(cfg))

			var remote verify.Counter = verify.NewRemoteCounter(container, target)
			if cfg.Verify.Direct || cmd.Bool("direct") {
				sc, err := verify.OpenSQL(ctx, target, verify.RetryConfig{
					Attempts: cfg.Verify.ConnectAttempts,
					Timeout:  cfg.Verify.ConnectTimeout,
				})
				if err != nil {
					return err
				}
				defer sc.Close()
				remote = sc
			}

			report := verify.Compare(ctx, tables, local, remote)
			report.Render(cmd.Root().Writer)
			if !report.AllMatch() {
				return errCountMismatch
			}
			return nil
		},
	}
}
