// Package analysis classifies Silex tokens into semantic categories and reports
// diagnostics for unresolved identifiers and lexer errors.
package analysis

import (
	"github.com/silex-lang/silex"
)

// Source is the diagnostic source reported to editors.
const Source = "silex"

// Diagnostic codes.
const (
	CodeUnknownIdentifier = "unknown-identifier"
	CodeSyntaxError       = "syntax-error"
)

// Result holds the output of one analysis pass over a document.
type Result struct {
	// Path is the file path (URI in LSP terms).
	Path string

	// Tokens are the emitted semantic tokens in document order.
	Tokens []SemanticToken

	// Data is Tokens in the LSP wire encoding.
	Data []uint32

	// Diagnostics contains all errors and warnings found during analysis.
	Diagnostics []Diagnostic

	// Calls records every closed call site.
	Calls []CallSite

	// Blocks records every closed bracket pair.
	Blocks []Block

	// Declarations lists names introduced by a declaration keyword, in document order.
	Declarations []Declaration

	// Unclosed lists brackets still open at end of input, outermost first.
	Unclosed []Block

	// Stray lists closing brackets that did not match the innermost open bracket.
	Stray []silex.Span
}

// SemanticToken is a classified token with 0-based absolute position.
type SemanticToken struct {
	Line      uint32
	StartChar uint32
	Length    uint32
	Category  Category
	Modifiers uint32

	// Text is the source text of the token.
	Text string

	// Kind is the lexer symbol name of the token, such as "Ident" or "fn".
	Kind string
}

// Contains reports whether the 0-based position falls on the token.
func (t SemanticToken) Contains(line, char uint32) bool {
	return line == t.Line && char >= t.StartChar && char < t.StartChar+t.Length
}

// CallSite is a function call observed during a pass.
type CallSite struct {
	Name string
	// Span is the span of the function name.
	Span silex.Span
	// Args is the number of arguments observed.
	Args int
	// Arities is the set the function accepts; nil if unknown.
	Arities Arityset
}

// Declaration is a name introduced by a keyword such as fn, struct or let.
type Declaration struct {
	Name     string
	Category Category
	// Qualified is the namespace-qualified name of a free function, otherwise Name.
	Qualified string
	// Keyword is the introducing keyword as written.
	Keyword string
	// Method is true for functions declared with a receiver.
	Method bool
	// Depth is the scope depth of the declaration; 0 is the global scope.
	Depth int
	Span  silex.Span
}

// Block is a bracket pair. Close is zero for unclosed brackets.
type Block struct {
	Kind  BracketKind
	Open  silex.Span
	Close silex.Span
}

// Diagnostic represents an error or warning found during analysis.
type Diagnostic struct {
	Span     silex.Span
	Severity DiagnosticSeverity
	Message  string
	Code     string // e.g., "unknown-identifier", "syntax-error"
	Source   string // "silex"
}

// DiagnosticSeverity indicates the severity of a diagnostic.
type DiagnosticSeverity int

// Diagnostic severity constants.
const (
	SeverityError DiagnosticSeverity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

func (s DiagnosticSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// HasErrors reports whether any diagnostic has error severity.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}

	return false
}
