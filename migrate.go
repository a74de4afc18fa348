package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"cutover/config"
	"cutover/dbsync"
)

// commandRunner executes the container runtime for migrate and verify.
var commandRunner dbsync.Runner = dbsync.ExecRunner{}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:      "migrate",
		Usage:     "copy the data of the local container database into the remote database",
		ArgsUsage: "[url]",
		Flags: []cli.Flag{
			remoteURLFlag(),
			&cli.StringFlag{
				Name:  "container",
				Usage: "name of the running database container",
			},
			&cli.StringFlag{
				Name:  "dump-file",
				Usage: "path of the transient dump file",
			},
			&cli.BoolFlag{
				Name:  "keep-dump",
				Usage: "keep the dump file after the import",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.FromContext(ctx)
			target, err := remoteTarget(cmd, cfg)
			if err != nil {
				return err
			}

			m := newMigrator(cfg, cmd)
			res, err := m.Run(ctx, target)
			if err != nil {
				return err
			}

			w := cmd.Root().Writer
			if res.SuspiciouslySmall {
				fmt.Fprintln(w, color.YellowString("warning: the dump was only %s, does the local database hold data?", humanize.Bytes(uint64(res.DumpBytes))))
			}
			fmt.Fprintln(w, color.GreenString("migrated %s of data into %s", humanize.Bytes(uint64(res.DumpBytes)), target))
			return nil
		},
	}
}

func localContainer(cfg *config.Config, cmd *cli.Command) *dbsync.Container {
	c := dbsync.NewContainer(cfg.Local.Container)
	c.Runtime = cfg.Local.Runtime
	c.Runner = commandRunner
	if cmd.IsSet("container") {
		c.Name = cmd.String("container")
	}
	return c
}

func localDB(cfg *config.Config) dbsync.LocalDB {
	return dbsync.LocalDB{
		User:     cfg.Local.User,
		Password: cfg.Local.Password,
		Database: cfg.Local.Database,
	}
}

func newMigrator(cfg *config.Config, cmd *cli.Command) *dbsync.Migrator {
	m := &dbsync.Migrator{
		Container:    localContainer(cfg, cmd),
		Local:        localDB(cfg),
		DumpFile:     cfg.Migrate.DumpFile,
		IgnoreTables: cfg.Migrate.IgnoreTables,
		KeepDump:     cfg.Migrate.KeepDump || cmd.Bool("keep-dump"),
	}
	if cmd.IsSet("dump-file") {
		m.DumpFile = cmd.String("dump-file")
	}
	return m
}
