package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/silex-lang/silex/analysis"
	"github.com/silex-lang/silex/runner"
)

func tokensCommand() *cli.Command {
	return &cli.Command{
		Name:      "tokens",
		Usage:     "Print the classified tokens of Silex files",
		ArgsUsage: "[files, directories or globs...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "where",
				Aliases: []string{"w"},
				Usage:   `filter expression over text, category, kind, line, char and length, e.g. 'category == "function"'`,
			},
			&cli.BoolFlag{
				Name:  "unmapped",
				Usage: "include punctuation tokens outside the legend",
			},
		},
		Action: runTokens,
	}
}

func runTokens(ctx context.Context, cmd *cli.Command) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	defer func() {
		_ = p.logger.Sync()
	}()

	filter, err := runner.CompileFilter(cmd.String("where"))
	if err != nil {
		return err
	}

	var opts []analysis.Option
	if cmd.Bool("unmapped") {
		opts = append(opts, analysis.WithEmitUnmapped(true))
	}

	analyzer, err := p.analyzer(opts...)
	if err != nil {
		return err
	}

	files, err := runner.CollectFiles(p.fs, argsOrCwd(cmd))
	if err != nil {
		return err
	}

	results, err := runner.New(analyzer, runner.WithFs(p.fs), runner.WithLogger(p.logger)).Run(ctx, files)
	if results == nil {
		return err
	}

	reporter := runner.NewReporter(os.Stdout, runner.StylesFor(os.Stdout), 0)

	for _, res := range results {
		if res == nil {
			continue
		}

		tokens, selErr := filter.Select(res.Tokens)
		if selErr != nil {
			return selErr
		}

		reporter.Tokens(res, tokens)
	}

	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)

		return cli.Exit("", 1)
	}

	return nil
}
