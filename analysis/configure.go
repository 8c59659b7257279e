package analysis

import (
	"github.com/silex-lang/silex"
	"github.com/silex-lang/silex/env"
)

// Configure builds an analyzer for a project. Environment files named by cfg
// are loaded through loader and merged over the standard library; cfg may be nil.
// Options in opts are applied after the ones derived from cfg.
func Configure(cfg *silex.Config, loader *env.Loader, opts ...Option) (*Analyzer, error) {
	var paths []string

	if cfg != nil {
		paths = cfg.EnvironmentPaths()
		opts = append([]Option{
			WithScopedNamespaces(cfg.ScopedNamespaces),
			WithLateDeclarations(cfg.LateDeclarations),
			WithEmitUnmapped(cfg.EmitUnmapped),
		}, opts...)
	}

	environment, err := loader.LoadAll(paths...)
	if err != nil {
		return nil, err
	}

	return NewAnalyzer(NewRegistry(environment), opts...), nil
}
