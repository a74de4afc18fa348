package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"cutover/config"
	"cutover/rewriter"
)

var errChangesPending = errors.New("files still reference " + rewriter.LocalURL)

func rewriteCommand() *cli.Command {
	return &cli.Command{
		Name:      "rewrite",
		Usage:     "replace hardcoded " + rewriter.LocalURL + " literals with the API URL constant",
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "print a diff instead of writing files",
			},
			&cli.BoolFlag{
				Name:  "check",
				Usage: "fail if any file would be rewritten; implies --dry-run",
			},
			&cli.StringFlag{
				Name:  "constant",
				Usage: "identifier interpolated in place of the literal",
			},
			&cli.StringFlag{
				Name:  "import-path",
				Usage: "module the constant is imported from",
			},
			&cli.StringSliceFlag{
				Name:  "ext",
				Usage: "file extensions to scan",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "directory names to skip",
			},
			&cli.StringFlag{
				Name:  "ignore-file",
				Usage: "gitignore-style file with extra exclusions",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir, err := resolveDir(cmd.Args().Get(0))
			if err != nil {
				return err
			}

			rc := rewriterConfig(config.FromContext(ctx).Rewrite, cmd)
			rw, err := rewriter.New(rc)
			if err != nil {
				return err
			}

			slog.Info("rewriting sources", "dir", dir, "dry_run", rc.DryRun)
			report, err := rw.Run(ctx, dir)
			if err != nil {
				return err
			}

			printReport(cmd.Root().Writer, report, rc.DryRun)
			if cmd.Bool("check") && len(report.Files) > 0 {
				return errChangesPending
			}
			return nil
		},
	}
}

func resolveDir(dir string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if dir == "" {
		return cwd, nil
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cwd, dir)
	}
	return dir, nil
}

func rewriterConfig(rc config.RewriteConfig, cmd *cli.Command) rewriter.Config {
	cfg := rewriter.Config{
		Constant:   rc.Constant,
		ImportPath: rc.ImportPath,
		Directive:  rc.Directive,
		Extensions: rc.Extensions,
		Exclude:    rc.Exclude,
		ConfigFile: rc.ConfigFile,
		IgnoreFile: rc.IgnoreFile,
		DryRun:     cmd.Bool("dry-run") || cmd.Bool("check"),
	}
	if cmd.IsSet("constant") {
		cfg.Constant = cmd.String("constant")
	}
	if cmd.IsSet("import-path") {
		cfg.ImportPath = cmd.String("import-path")
	}
	if cmd.IsSet("ext") {
		cfg.Extensions = cmd.StringSlice("ext")
	}
	if cmd.IsSet("exclude") {
		cfg.Exclude = cmd.StringSlice("exclude")
	}
	if cmd.IsSet("ignore-file") {
		cfg.IgnoreFile = cmd.String("ignore-file")
	}
	return cfg
}

func printReport(w io.Writer, report *rewriter.Report, dryRun bool) {
	verb := "fixed"
	if dryRun {
		verb = "would fix"
	}
	for _, f := range report.Files {
		line := fmt.Sprintf("%s %s (%d)", verb, f.Path, f.Matches)
		if f.ImportInserted {
			line += " +import"
		}
		fmt.Fprintln(w, color.GreenString("%s", line))
		if f.Diff != "" {
			fmt.Fprint(w, f.Diff)
		}
	}
	fmt.Fprintf(w, "%d files scanned, %d %s\n", report.Scanned, len(report.Files), verb)
	fmt.Fprintf(w, "tree %s\n", report.Digest)
}
