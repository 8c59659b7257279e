package silex

import "github.com/alecthomas/participle/v2/lexer"

// Span represents a range in source code.
// Lines and columns are 1-based; columns count UTF-16 code units.
type Span struct {
	Start lexer.Position
	End   lexer.Position
}

// Contains reports whether the 1-based line/column falls inside the span.
func (s Span) Contains(line, column int) bool {
	if line < s.Start.Line || line > s.End.Line {
		return false
	}

	if line == s.Start.Line && column < s.Start.Column {
		return false
	}

	if line == s.End.Line && column > s.End.Column {
		return false
	}

	return true
}
