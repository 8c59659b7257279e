package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"

	"github.com/silex-lang/silex/analysis"
	"github.com/silex-lang/silex/runner"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Report diagnostics for Silex files (exit 1 on errors)",
		ArgsUsage: "[files, directories or globs...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "also report arity mismatches and unbalanced brackets",
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "number of files analyzed in parallel (0 = number of CPUs)",
			},
		},
		Action: runCheck,
	}
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	defer func() {
		_ = p.logger.Sync()
	}()

	var opts []analysis.Option
	if cmd.Bool("strict") {
		opts = append(opts, analysis.WithRules(analysis.StrictRules()...))
	}

	analyzer, err := p.analyzer(opts...)
	if err != nil {
		return err
	}

	files, err := runner.CollectFiles(p.fs, argsOrCwd(cmd))
	if err != nil {
		return err
	}

	r := runner.New(analyzer,
		runner.WithFs(p.fs),
		runner.WithLogger(p.logger),
		runner.WithJobs(int(cmd.Int("jobs"))),
	)

	results, runErr := r.Run(ctx, files)
	if results == nil {
		return runErr
	}

	styles := runner.StylesFor(os.Stdout)
	failed := runErr != nil

	for _, res := range results {
		if res == nil || len(res.Diagnostics) == 0 {
			continue
		}

		failed = failed || res.HasErrors()

		runner.NewReporter(os.Stdout, styles, p.config.TabSizeFor(res.Path)).Diagnostics(res)
	}

	for _, err := range multierr.Errors(runErr) {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}

	summary := runner.Summarize(results)
	runner.NewReporter(os.Stdout, styles, 0).Summary(summary)

	if failed {
		return cli.Exit("", 1)
	}

	return nil
}

func argsOrCwd(cmd *cli.Command) []string {
	if cmd.Args().Len() == 0 {
		return []string{"."}
	}

	return cmd.Args().Slice()
}
