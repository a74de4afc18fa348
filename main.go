package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"cutover/config"
)

func RootCommand() *cli.Command {
	cmd := &cli.Command{
		Name:  "cutover",
		Usage: "move a local docker + localhost:3000 setup to a managed deployment",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "config file (default .cutover.yaml in the working or home directory)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return ctx, err
			}
			if cmd.IsSet("log-level") {
				cfg.Log.Level = cmd.String("log-level")
			}
			slog.SetDefault(newLogger(cfg.Log))
			return config.WithContext(ctx, cfg), nil
		},
		Commands: []*cli.Command{
			rewriteCommand(),
			migrateCommand(),
			verifyCommand(),
			configCommand(),
		},
	}
	return cmd
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func main() {
	cmd := RootCommand()
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("exited", "error", err)
		os.Exit(1)
	}
}
