package analysis

import (
	"strconv"
)

// Rule codes.
const (
	codeArityMismatch    = "arity-mismatch"
	codeUnclosedBracket  = "unclosed-bracket"
	codeUnmatchedBracket = "unmatched-bracket"
)

// Rule represents a check run over the result of a pass.
// Inspired by go/analysis.Analyzer pattern.
type Rule struct {
	// Name is a short identifier for the rule (used in diagnostic codes).
	Name string

	// Doc is a brief description of what the rule checks.
	Doc string

	// Severity is the default severity for diagnostics from this rule.
	Severity DiagnosticSeverity

	// Run executes the rule and appends any diagnostics to the result.
	Run func(r *Result)
}

// DefaultRules returns the rules every analyzer runs. Unknown identifiers and
// syntax errors are reported by the pass itself, so the default set is empty.
func DefaultRules() []*Rule {
	return nil
}

// StrictRules returns opt-in checks that go beyond what editors report by default.
func StrictRules() []*Rule {
	return []*Rule{
		ArityMismatchRule,
		UnclosedBracketRule,
		UnmatchedBracketRule,
	}
}

// ----------------------------------------------------------------------------
// Rule: arity-mismatch
// ----------------------------------------------------------------------------

// ArityMismatchRule reports calls whose argument count is not an accepted arity.
var ArityMismatchRule = &Rule{
	Name:     codeArityMismatch,
	Doc:      "Reports calls to known functions with an unexpected number of arguments.",
	Severity: SeverityWarning,
	Run:      checkArity,
}

func checkArity(r *Result) {
	for _, call := range r.Calls {
		if call.Arities == nil || call.Arities.Contains(call.Args) {
			continue
		}

		r.Diagnostics = append(r.Diagnostics, Diagnostic{
			Span:     call.Span,
			Severity: SeverityWarning,
			Message: call.Name + " expects " + call.Arities.String() +
				" arguments, got " + strconv.Itoa(call.Args),
			Code:   codeArityMismatch,
			Source: Source,
		})
	}
}

// ----------------------------------------------------------------------------
// Rule: unclosed-bracket
// ----------------------------------------------------------------------------

// UnclosedBracketRule reports brackets still open at end of input.
var UnclosedBracketRule = &Rule{
	Name:     codeUnclosedBracket,
	Doc:      "Reports brackets that are never closed.",
	Severity: SeverityWarning,
	Run:      checkUnclosed,
}

func checkUnclosed(r *Result) {
	for _, b := range r.Unclosed {
		r.Diagnostics = append(r.Diagnostics, Diagnostic{
			Span:     b.Open,
			Severity: SeverityWarning,
			Message:  "unclosed " + b.Kind.String() + " bracket opened on line " + formatLine(b.Open.Start.Line),
			Code:     codeUnclosedBracket,
			Source:   Source,
		})
	}
}

// ----------------------------------------------------------------------------
// Rule: unmatched-bracket
// ----------------------------------------------------------------------------

// UnmatchedBracketRule reports closing brackets that match no open bracket.
var UnmatchedBracketRule = &Rule{
	Name:     codeUnmatchedBracket,
	Doc:      "Reports closing brackets that do not match the innermost open bracket.",
	Severity: SeverityWarning,
	Run:      checkUnmatched,
}

func checkUnmatched(r *Result) {
	for _, span := range r.Stray {
		r.Diagnostics = append(r.Diagnostics, Diagnostic{
			Span:     span,
			Severity: SeverityWarning,
			Message:  "unmatched closing bracket",
			Code:     codeUnmatchedBracket,
			Source:   Source,
		})
	}
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

func formatLine(line int) string {
	return strconv.Itoa(line)
}
