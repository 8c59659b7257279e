package analysis

import (
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/silex-lang/silex"
)

// BracketKind distinguishes what an open bracket means.
type BracketKind uint8

// Bracket kinds.
const (
	// BracketCall is the argument list of a function call.
	BracketCall BracketKind = iota
	// BracketDeclaration is the parameter list of a function being declared.
	BracketDeclaration
	// BracketReceiver is the "(self T)" part of a method declaration.
	BracketReceiver
	// BracketGroup is any other parenthesis.
	BracketGroup
	// BracketIndex is a square bracket.
	BracketIndex
	// BracketBlock is a plain brace block.
	BracketBlock
	// BracketNamespaceBody is the body of a namespace.
	BracketNamespaceBody
	// BracketStructBody lists struct fields, in a declaration or a constructor.
	BracketStructBody
	// BracketEnumBody lists enum variants.
	BracketEnumBody
)

var bracketKindNames = [...]string{
	BracketCall:          "call",
	BracketDeclaration:   "declaration",
	BracketReceiver:      "receiver",
	BracketGroup:         "group",
	BracketIndex:         "index",
	BracketBlock:         "block",
	BracketNamespaceBody: "namespace",
	BracketStructBody:    "struct",
	BracketEnumBody:      "enum",
}

func (k BracketKind) String() string {
	if int(k) < len(bracketKindNames) {
		return bracketKindNames[k]
	}

	return "unknown"
}

// closer returns the token type that closes a bracket of this kind.
func (k BracketKind) closer() lexer.TokenType {
	switch k {
	case BracketCall, BracketDeclaration, BracketReceiver, BracketGroup:
		return silex.TokenRParen
	case BracketIndex:
		return silex.TokenRBracket
	default:
		return silex.TokenRBrace
	}
}

// IsBrace reports whether the kind was opened by "{".
func (k BracketKind) IsBrace() bool {
	return k.closer() == silex.TokenRBrace
}

// CallFrame tracks one open argument or parameter list.
type CallFrame struct {
	// Name is the function name as written.
	Name string
	// Args counts arguments (calls) or parameters (declarations) seen so far.
	Args int
	// Arities is what the registry expects; nil when declaring.
	Arities Arityset
	// Span is the span of the function name.
	Span silex.Span
}

// Bracket is one entry of the bracket stack.
type Bracket struct {
	Kind BracketKind
	Open silex.Token

	// Frame is set for BracketCall and BracketDeclaration.
	Frame *CallFrame

	// Namespace is true when opening this brace pushed a namespace segment.
	Namespace bool
	// Method is true for a declaration that followed a receiver list.
	Method bool

	// expectArg is set right after "(" or "," in a list that counts entries.
	expectArg bool
	// angles is the depth of open generic type brackets in a parameter list.
	angles int
}

// BracketStack is the stack of currently open brackets.
type BracketStack struct {
	items []*Bracket
}

// Push opens a bracket.
func (s *BracketStack) Push(b *Bracket) {
	s.items = append(s.items, b)
}

// Top returns the innermost open bracket, or nil.
func (s *BracketStack) Top() *Bracket {
	if len(s.items) == 0 {
		return nil
	}

	return s.items[len(s.items)-1]
}

// TopKind reports whether the innermost bracket is of kind k.
func (s *BracketStack) TopKind(k BracketKind) bool {
	top := s.Top()

	return top != nil && top.Kind == k
}

// Pop closes the innermost bracket if closer matches its family. A mismatched
// closer leaves the stack untouched and returns nil.
func (s *BracketStack) Pop(closer lexer.TokenType) *Bracket {
	top := s.Top()
	if top == nil || top.Kind.closer() != closer {
		return nil
	}

	s.items = s.items[:len(s.items)-1]

	return top
}

// Len returns the number of open brackets.
func (s *BracketStack) Len() int {
	return len(s.items)
}

// Unclosed returns the open brackets, outermost first.
func (s *BracketStack) Unclosed() []*Bracket {
	return append([]*Bracket(nil), s.items...)
}
