// Package main provides the silex CLI tool.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

var version = "dev"

func main() {
	app := &cli.Command{
		Name:    "silex",
		Version: version,
		Usage:   "Semantic analysis for Silex smart contracts",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log analysis details to stderr",
			},
			&cli.StringSliceFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "extra function environment file (repeatable)",
				Sources: cli.EnvVars("SILEX_ENV"),
			},
		},
		Commands: []*cli.Command{
			checkCommand(),
			tokensCommand(),
			legendCommand(),
			functionsCommand(),
		},
	}

	err := app.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
