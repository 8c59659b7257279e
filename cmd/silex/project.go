package main

import (
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/silex-lang/silex"
	"github.com/silex-lang/silex/analysis"
	"github.com/silex-lang/silex/env"
)

// project bundles what every command needs: the filesystem, the nearest
// .silex.yaml (zero value when absent) and a logger.
type project struct {
	fs     afero.Fs
	config *silex.Config
	logger *zap.Logger
}

func loadProject(cmd *cli.Command) (*project, error) {
	logger, err := newLogger(cmd.Bool("verbose"))
	if err != nil {
		return nil, err
	}

	fs := afero.NewOsFs()

	cfg, err := silex.LoadConfig(fs, ".")
	if errors.Is(err, silex.ErrConfigNotFound) {
		cfg, err = &silex.Config{}, nil
	}

	if err != nil {
		return nil, err
	}

	for _, p := range cmd.StringSlice("env") {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		cfg.Environments = append(cfg.Environments, abs)
	}

	logger.Debug("loaded project", zap.Strings("environments", cfg.EnvironmentPaths()))

	return &project{fs: fs, config: cfg, logger: logger}, nil
}

func (p *project) analyzer(opts ...analysis.Option) (*analysis.Analyzer, error) {
	opts = append([]analysis.Option{analysis.WithLogger(p.logger)}, opts...)

	return analysis.Configure(p.config, env.NewLoader(p.fs), opts...)
}

// newLogger logs to stderr so that stdout carries only the report.
func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)

	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return logger, nil
}
