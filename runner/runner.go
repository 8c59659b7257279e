// Package runner analyzes many Silex files concurrently and renders the results.
package runner

import (
	"context"
	"runtime"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/silex-lang/silex/analysis"
)

// Runner analyzes files against one shared analyzer.
type Runner struct {
	analyzer *analysis.Analyzer
	fs       afero.Fs
	logger   *zap.Logger
	jobs     int
}

// Option configures a Runner.
type Option func(*Runner)

// WithFs sets the filesystem files are read from.
func WithFs(fs afero.Fs) Option {
	return func(r *Runner) {
		r.fs = fs
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithJobs limits the number of files analyzed at once. Values below 1 mean GOMAXPROCS.
func WithJobs(n int) Option {
	return func(r *Runner) {
		r.jobs = n
	}
}

// New creates a runner.
func New(analyzer *analysis.Analyzer, opts ...Option) *Runner {
	r := &Runner{
		analyzer: analyzer,
		fs:       afero.NewOsFs(),
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.jobs < 1 {
		r.jobs = runtime.GOMAXPROCS(0)
	}

	return r
}

// FileResult is the analysis of one file together with its source.
type FileResult struct {
	Path   string
	Source []byte
	*analysis.Result
}

// RunFile reads and analyzes a single file.
func (r *Runner) RunFile(ctx context.Context, path string) (*FileResult, error) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, errors.Errorf("read %s: %w", path, err)
	}

	result, err := r.analyzer.Analyze(ctx, path, data)
	if err != nil {
		return nil, errors.Errorf("analyze %s: %w", path, err)
	}

	return &FileResult{Path: path, Source: data, Result: result}, nil
}

// Run analyzes paths concurrently. Results keep the order of paths; a file that
// cannot be read leaves a nil entry and its error is combined into the returned error.
// Cancellation stops the run and is returned as is.
func (r *Runner) Run(ctx context.Context, paths []string) ([]*FileResult, error) {
	results := make([]*FileResult, len(paths))
	fileErrs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.jobs)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := r.RunFile(gctx, path)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}

				r.logger.Debug("file failed", zap.String("path", path), zap.Error(err))
				fileErrs[i] = err

				return nil
			}

			results[i] = res

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, err
	}

	return results, multierr.Combine(fileErrs...)
}

// Summary counts diagnostics by severity across results.
type Summary struct {
	Files    int
	Errors   int
	Warnings int
	Others   int
}

// Summarize counts the diagnostics in results. Nil entries are skipped.
func Summarize(results []*FileResult) Summary {
	var s Summary

	for _, res := range results {
		if res == nil {
			continue
		}

		s.Files++

		for _, d := range res.Diagnostics {
			switch d.Severity {
			case analysis.SeverityError:
				s.Errors++
			case analysis.SeverityWarning:
				s.Warnings++
			default:
				s.Others++
			}
		}
	}

	return s
}
