package analysis

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/silex-lang/silex"
)

// Analyzer runs classification passes against a shared function registry.
// It holds no per-document state and is safe for concurrent use.
type Analyzer struct {
	registry *Registry
	logger   *zap.Logger

	// scopedNamespaces pops a namespace segment when its body closes.
	scopedNamespaces bool

	// lateDeclarations lets a declaration replace an unknown-identifier placeholder.
	lateDeclarations bool

	// emitUnmapped emits Other tokens with the sentinel id.
	emitUnmapped bool

	// rules are extra checks run over each result.
	rules []*Rule
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// WithScopedNamespaces makes a namespace segment last only until its body closes.
// By default entering a namespace extends the prefix for the rest of the document.
func WithScopedNamespaces(enabled bool) Option {
	return func(a *Analyzer) {
		a.scopedNamespaces = enabled
	}
}

// WithLateDeclarations lets a declaration replace the placeholder left by an
// earlier unresolved use of the same name in the same scope, so uses after the
// declaration resolve. By default the first entry in a scope wins and the name
// stays unknown.
func WithLateDeclarations(enabled bool) Option {
	return func(a *Analyzer) {
		a.lateDeclarations = enabled
	}
}

// WithEmitUnmapped emits punctuation tokens with the Other category.
func WithEmitUnmapped(enabled bool) Option {
	return func(a *Analyzer) {
		a.emitUnmapped = enabled
	}
}

// WithRules adds checks that run after each pass.
func WithRules(rules ...*Rule) Option {
	return func(a *Analyzer) {
		a.rules = append(a.rules, rules...)
	}
}

// NewAnalyzer creates an analyzer over registry. A nil registry is treated as empty.
func NewAnalyzer(registry *Registry, opts ...Option) *Analyzer {
	if registry == nil {
		registry = NewRegistry(nil)
	}

	a := &Analyzer{
		registry: registry,
		logger:   zap.NewNop(),
		rules:    DefaultRules(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Registry returns the shared registry.
func (a *Analyzer) Registry() *Registry {
	return a.registry
}

// Analyze classifies content in a single pass. It returns ctx.Err() if ctx is
// cancelled before the pass completes; no partial result is returned.
func (a *Analyzer) Analyze(ctx context.Context, path string, content []byte) (*Result, error) {
	start := time.Now()

	c := newClassifier(a.registry, a.scopedNamespaces, a.lateDeclarations)
	e := &emitter{classifier: c, emitUnmapped: a.emitUnmapped}

	err := e.run(ctx, silex.Tokens(path, string(content)))
	if err != nil {
		a.logger.Debug("analysis cancelled", zap.String("path", path), zap.Error(err))

		return nil, err
	}

	result := &Result{
		Path:         path,
		Tokens:       e.tokens,
		Data:         Encode(e.tokens),
		Diagnostics:  e.diagnostics,
		Calls:        c.calls,
		Blocks:       c.blocks,
		Declarations: c.decls,
		Unclosed:     c.unclosed(),
		Stray:        c.stray,
	}

	for _, rule := range a.rules {
		rule.Run(result)
	}

	a.logger.Debug("analyzed document",
		zap.String("path", path),
		zap.Int("tokens", len(result.Tokens)),
		zap.Int("diagnostics", len(result.Diagnostics)),
		zap.Int("unclosed", c.brackets.Len()),
		zap.Strings("namespace", c.ns.Segments()),
		zap.Duration("elapsed", time.Since(start)),
	)

	return result, nil
}
