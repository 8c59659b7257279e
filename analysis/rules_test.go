package analysis_test

import (
	"testing"

	"github.com/silex-lang/silex/analysis"
)

func TestRule_ArityMismatch(t *testing.T) {
	t.Parallel()

	strict := analysis.WithRules(analysis.ArityMismatchRule)

	result := analyze(t, "require(1, 2, 3);", strict)
	assertHasDiagnostic(t, result, "arity-mismatch")

	if got := result.Diagnostics[0].Message; got != "require expects 2 arguments, got 3" {
		t.Errorf("Message = %q", got)
	}

	if result.Diagnostics[0].Severity != analysis.SeverityWarning {
		t.Errorf("Severity = %v, want warning", result.Diagnostics[0].Severity)
	}

	ok := analyze(t, "assert(true); assert(true, \"msg\");", strict)
	assertNoDiagnostics(t, ok)
}

func TestRule_DefaultRulesAreQuiet(t *testing.T) {
	t.Parallel()

	if len(analysis.DefaultRules()) != 0 {
		t.Error("default rules should add nothing beyond the pass's own diagnostics")
	}

	for _, r := range analysis.StrictRules() {
		if r.Name == "" || r.Doc == "" || r.Run == nil {
			t.Errorf("rule %+v is incomplete", r)
		}
	}
}

func TestRule_Unclosed(t *testing.T) {
	t.Parallel()

	result := analyze(t, "fn f() {\n", analysis.WithRules(analysis.UnclosedBracketRule))

	assertHasDiagnostic(t, result, "unclosed-bracket")

	if got := result.Diagnostics[0].Message; got != "unclosed block bracket opened on line 1" {
		t.Errorf("Message = %q", got)
	}
}

func TestRule_StrictDiagnosticsCarryRuleName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rule  *analysis.Rule
		input string
	}{
		{analysis.ArityMismatchRule, "require(1);"},
		{analysis.UnclosedBracketRule, "fn f() {\n"},
		{analysis.UnmatchedBracketRule, "let x = 1; }"},
	}

	for _, tt := range tests {
		t.Run(tt.rule.Name, func(t *testing.T) {
			t.Parallel()

			result := analyze(t, tt.input, analysis.WithRules(analysis.StrictRules()...))

			found := false

			for _, d := range result.Diagnostics {
				if d.Code != tt.rule.Name {
					continue
				}

				found = true

				if d.Severity != tt.rule.Severity {
					t.Errorf("Severity = %v, want %v", d.Severity, tt.rule.Severity)
				}

				if d.Source != analysis.Source {
					t.Errorf("Source = %q, want %q", d.Source, analysis.Source)
				}
			}

			if !found {
				t.Errorf("no %s diagnostic in %v", tt.rule.Name, result.Diagnostics)
			}
		})
	}
}
