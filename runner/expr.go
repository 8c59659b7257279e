package runner

import (
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gitlab.com/tozd/go/errors"

	"github.com/silex-lang/silex/analysis"
)

// ErrExprNotBool is returned when a filter expression does not evaluate to a boolean.
var ErrExprNotBool = errors.New("expression did not return a boolean")

// TokenEnv is the environment a token filter expression is evaluated against.
type TokenEnv struct {
	Text     string `expr:"text"`
	Category string `expr:"category"`
	Kind     string `expr:"kind"`
	Line     int    `expr:"line"`
	Char     int    `expr:"char"`
	Length   int    `expr:"length"`
}

// NewTokenEnv exposes a token to filter expressions with 1-based line and character.
func NewTokenEnv(tok analysis.SemanticToken) TokenEnv {
	return TokenEnv{
		Text:     tok.Text,
		Category: tok.Category.String(),
		Kind:     tok.Kind,
		Line:     int(tok.Line) + 1,
		Char:     int(tok.StartChar) + 1,
		Length:   int(tok.Length),
	}
}

// Filter is a compiled boolean expression over TokenEnv, for example
// `category == "function" && line > 10`.
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles a filter expression. An empty expression matches every token.
func CompileFilter(source string) (*Filter, error) {
	f := &Filter{source: source}

	if strings.TrimSpace(source) == "" {
		return f, nil
	}

	program, err := expr.Compile(source, expr.Env(TokenEnv{}), expr.AsBool())
	if err != nil {
		return nil, errors.Errorf("compile expression %q: %w", source, err)
	}

	f.program = program

	return f, nil
}

// Match reports whether tok satisfies the filter.
func (f *Filter) Match(tok analysis.SemanticToken) (bool, error) {
	if f == nil || f.program == nil {
		return true, nil
	}

	output, err := expr.Run(f.program, NewTokenEnv(tok))
	if err != nil {
		return false, errors.Errorf("evaluate expression %q: %w", f.source, err)
	}

	matched, ok := output.(bool)
	if !ok {
		return false, errors.Errorf("%w: %q returned %T", ErrExprNotBool, f.source, output)
	}

	return matched, nil
}

// Select returns the tokens that satisfy the filter, stopping at the first evaluation error.
func (f *Filter) Select(tokens []analysis.SemanticToken) ([]analysis.SemanticToken, error) {
	var out []analysis.SemanticToken

	for _, tok := range tokens {
		ok, err := f.Match(tok)
		if err != nil {
			return nil, err
		}

		if ok {
			out = append(out, tok)
		}
	}

	return out, nil
}
