package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"cutover/config"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "print the effective configuration with secrets redacted",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return config.FromContext(ctx).WriteYAML(cmd.Root().Writer)
		},
	}
}
