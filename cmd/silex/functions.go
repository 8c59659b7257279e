package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/silex-lang/silex/env"
	"github.com/silex-lang/silex/runner"
)

func functionsCommand() *cli.Command {
	return &cli.Command{
		Name:   "functions",
		Usage:  "List the functions known to the analyzer, grouped by receiver",
		Action: runFunctions,
	}
}

func runFunctions(_ context.Context, cmd *cli.Command) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	defer func() {
		_ = p.logger.Sync()
	}()

	environment, err := env.NewLoader(p.fs).LoadAll(p.config.EnvironmentPaths()...)
	if err != nil {
		return err
	}

	styles := runner.StylesFor(os.Stdout)
	grouped := environment.ByReceiver()

	for _, recv := range slices.Sorted(maps.Keys(grouped)) {
		title := recv
		if title == "" {
			title = "(free functions)"
		}

		_, _ = fmt.Fprintln(os.Stdout, styles.Bold.Render(title))

		for _, f := range grouped[recv] {
			_, _ = fmt.Fprintf(os.Stdout, "  %s/%d\n", f.QualifiedName(), f.Params)
		}
	}

	return nil
}
