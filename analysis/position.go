package analysis

import (
	"sort"

	"github.com/alecthomas/participle/v2/lexer"
)

// PositionToLexer converts LSP 0-based line/character to participle's 1-based line/column.
func PositionToLexer(line, character uint32) lexer.Position {
	return lexer.Position{
		Line:   int(line) + 1, // LSP is 0-based, participle is 1-based
		Column: int(character) + 1,
	}
}

// TokenAt returns the emitted token covering the 0-based position.
func TokenAt(r *Result, line, character uint32) (SemanticToken, bool) {
	if r == nil {
		return SemanticToken{}, false
	}

	// Tokens are in document order; find the first token not before the line.
	i := sort.Search(len(r.Tokens), func(i int) bool {
		return r.Tokens[i].Line >= line
	})

	for ; i < len(r.Tokens) && r.Tokens[i].Line == line; i++ {
		if r.Tokens[i].Contains(line, character) {
			return r.Tokens[i], true
		}
	}

	return SemanticToken{}, false
}

// CallAt returns the call site whose function name covers the 0-based position.
func CallAt(r *Result, line, character uint32) (CallSite, bool) {
	if r == nil {
		return CallSite{}, false
	}

	pos := PositionToLexer(line, character)

	for _, c := range r.Calls {
		if c.Span.Contains(pos.Line, pos.Column) {
			return c, true
		}
	}

	return CallSite{}, false
}
