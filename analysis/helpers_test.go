package analysis_test

import (
	"context"
	"testing"

	"github.com/silex-lang/silex/analysis"
	"github.com/silex-lang/silex/env"
)

func newAnalyzer(opts ...analysis.Option) *analysis.Analyzer {
	return analysis.NewAnalyzer(analysis.NewRegistry(env.MustDefault()), opts...)
}

func analyze(t *testing.T, input string, opts ...analysis.Option) *analysis.Result {
	t.Helper()

	result, err := newAnalyzer(opts...).Analyze(context.Background(), "test.slx", []byte(input))
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	return result
}

// categoriesOf returns the categories of every emitted token with the given text, in order.
func categoriesOf(r *analysis.Result, text string) []analysis.Category {
	var out []analysis.Category

	for _, tok := range r.Tokens {
		if tok.Text == text {
			out = append(out, tok.Category)
		}
	}

	return out
}

func assertHasDiagnostic(t *testing.T, result *analysis.Result, code string) {
	t.Helper()

	for _, d := range result.Diagnostics {
		if d.Code == code {
			return
		}
	}

	t.Errorf("expected diagnostic %q, got:", code)

	for _, d := range result.Diagnostics {
		t.Logf("  %s: %s", d.Code, d.Message)
	}
}

func assertNoDiagnostics(t *testing.T, result *analysis.Result) {
	t.Helper()

	for _, d := range result.Diagnostics {
		t.Errorf("unexpected diagnostic %s at %d:%d: %s", d.Code, d.Span.Start.Line, d.Span.Start.Column, d.Message)
	}
}
