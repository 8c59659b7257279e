package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/silex-lang/silex/analysis"
)

func legendCommand() *cli.Command {
	return &cli.Command{
		Name:  "legend",
		Usage: "Print the semantic token legend (index and name)",
		Action: func(_ context.Context, _ *cli.Command) error {
			for i, name := range analysis.Legend() {
				_, _ = fmt.Fprintf(os.Stdout, "%2d %s\n", i, name)
			}

			return nil
		},
	}
}
