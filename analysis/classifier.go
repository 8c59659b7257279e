package analysis

import (
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/silex-lang/silex"
)

// classifier assigns a category to each token of one pass. It looks back at
// the previous significant token (operators and comments are skipped) and
// at the innermost open bracket; it never looks ahead.
type classifier struct {
	scopes   *ScopeStack
	ns       NamespacePath
	funcs    *Overlay
	brackets BracketStack

	scopedNamespaces bool
	lateDeclarations bool

	// Previous significant token and what was learned about it.
	prev        silex.Token
	prevCat     Category
	prevDecl    lexer.TokenType // keyword that declared prev, 0 if none
	prevMethod  bool
	prevArities Arityset

	// Set while classifying the current token, moved to prev* afterwards.
	curDecl    lexer.TokenType
	curMethod  bool
	curArities Arityset

	// afterReceiver is set when a method receiver list has just closed.
	afterReceiver bool

	// path holds the segments written before the current "::".
	path     []string
	pathHead Category

	calls  []CallSite
	blocks []Block
	decls  []Declaration
	stray  []silex.Span
}

// declarationKeywords maps keywords that introduce a name to the category the name gets.
var declarationKeywords = map[lexer.TokenType]Category{
	silex.TokenFn:        Function,
	silex.TokenEntry:     Function,
	silex.TokenStruct:    Struct,
	silex.TokenEnum:      Enum,
	silex.TokenNamespace: Namespace,
	silex.TokenLet:       Variable,
	silex.TokenConst:     Variable,
	silex.TokenFor:       Variable,
	silex.TokenForEach:   Variable,
	silex.TokenWhile:     Variable,
}

func newClassifier(registry *Registry, scopedNamespaces, lateDeclarations bool) *classifier {
	return &classifier{
		scopes:           NewScopeStack(),
		funcs:            NewOverlay(registry),
		scopedNamespaces: scopedNamespaces,
		lateDeclarations: lateDeclarations,
	}
}

// classify returns the category of tok and updates the pass state.
func (c *classifier) classify(tok silex.Token) Category {
	if tok.Kind == silex.TokenComment {
		return Comment
	}

	c.countArgument(tok)

	c.curDecl, c.curMethod, c.curArities = 0, false, nil

	cat := c.category(tok)

	if tok.Kind == silex.TokenIdent && c.prev.Kind != silex.TokenPathSep {
		c.pathHead = cat
	}

	if !tok.IsOperator() {
		c.prev = tok
		c.prevCat = cat
		c.prevDecl, c.prevMethod, c.prevArities = c.curDecl, c.curMethod, c.curArities
	}

	return cat
}

// countArgument counts tok as the start of an argument when it directly
// follows "(" or "," of a call or declaration list.
func (c *classifier) countArgument(tok silex.Token) {
	top := c.brackets.Top()
	if top == nil || !top.expectArg {
		return
	}

	top.expectArg = false

	if tok.Kind != silex.TokenRParen && top.Frame != nil {
		top.Frame.Args++
	}
}

func (c *classifier) category(tok silex.Token) Category {
	afterReceiver := c.afterReceiver
	c.afterReceiver = false

	switch {
	case tok.IsOperator():
		c.trackAngles(tok.Value)

		return Operator
	case tok.Kind == silex.TokenLet, tok.Kind == silex.TokenAs, tok.Kind == silex.TokenIn:
		return VariableDeclarationAccessory
	case silex.IsKeywordToken(tok.Kind):
		return Keyword
	case tok.Kind == silex.TokenIdent:
		return c.identifier(tok, afterReceiver)
	case tok.Kind == silex.TokenString:
		return String
	case tok.Kind == silex.TokenNumber:
		return Number
	case silex.IsLiteralToken(tok.Kind):
		return Literal
	case silex.IsTypeToken(tok.Kind):
		return Type
	}

	switch tok.Kind {
	case silex.TokenLParen:
		c.openParen(tok)
	case silex.TokenRParen:
		c.closeParen(tok)
	case silex.TokenLBracket:
		c.brackets.Push(&Bracket{Kind: BracketIndex, Open: tok})
	case silex.TokenRBracket:
		c.closeBracket(tok)
	case silex.TokenLBrace:
		c.openBrace(tok)
	case silex.TokenRBrace:
		c.closeBrace(tok)
	case silex.TokenComma:
		if top := c.brackets.Top(); top != nil && top.Frame != nil && top.angles == 0 {
			top.expectArg = true
		}
	case silex.TokenPathSep:
		if c.prev.Kind == silex.TokenIdent || silex.IsTypeToken(c.prev.Kind) {
			c.path = append(c.path, c.prev.Value)
		}
	}

	return Other
}

func (c *classifier) identifier(tok silex.Token, afterReceiver bool) Category {
	name := tok.Value

	if name == "import" {
		return Keyword
	}

	if c.prev.Kind != silex.TokenPathSep {
		c.path = c.path[:0]
	}

	if cat, ok := declarationKeywords[c.prev.Kind]; ok {
		return c.declareBy(tok, c.prev.Kind, cat)
	}

	if afterReceiver {
		c.curDecl, c.curMethod = silex.TokenFn, true
		c.decls = append(c.decls, Declaration{
			Name:      name,
			Category:  Function,
			Qualified: name,
			Keyword:   "fn",
			Method:    true,
			Depth:     c.scopes.Depth() - 1,
			Span:      tok.Span,
		})

		return Function
	}

	if cat, ok := c.listEntry(name); ok {
		return cat
	}

	switch c.prev.Kind {
	case silex.TokenDot:
		if a, ok := c.funcs.LookupMethod(name); ok {
			c.curArities = a

			return Function
		}

		return Variable
	case silex.TokenPathSep:
		return c.pathMember(name)
	}

	if a, ok := c.funcs.Resolve(c.ns.segments, nil, name); ok {
		c.curArities = a

		return Function
	}

	if cat, ok := c.scopes.Resolve(name); ok {
		return cat
	}

	if c.funcs.HasNamespace(name) {
		return Namespace
	}

	c.scopes.DeclareIfAbsent(name, UnknownIdentifier)

	return UnknownIdentifier
}

// listEntry classifies an identifier that opens an entry of a parameter list,
// receiver list, struct body or enum body.
func (c *classifier) listEntry(name string) (Category, bool) {
	top := c.brackets.Top()
	if top == nil {
		return 0, false
	}

	afterOpen := c.prev.Kind == top.Open.Kind
	afterSep := c.prev.Kind == silex.TokenComma

	switch top.Kind {
	case BracketDeclaration:
		if (afterOpen || afterSep) && top.angles == 0 {
			return c.declare(name, Parameter), true
		}
	case BracketReceiver:
		if afterOpen {
			return c.declare(name, Parameter), true
		}
	case BracketStructBody:
		if afterOpen || afterSep || c.prev.Kind == silex.TokenSemi {
			return c.declare(name, Variable), true
		}
	case BracketEnumBody:
		if afterOpen || afterSep {
			return c.declare(name, Enum), true
		}
	default:
	}

	return 0, false
}

// pathMember classifies the identifier after "::".
func (c *classifier) pathMember(name string) Category {
	if a, ok := c.funcs.Resolve(c.ns.segments, c.path, name); ok {
		c.curArities = a

		return Function
	}

	if c.funcs.HasNamespace(append(c.path, name)...) {
		return Namespace
	}

	if c.pathHead == Enum {
		return Enum
	}

	return Variable
}

// declareBy handles the identifier after a declaration keyword.
func (c *classifier) declareBy(tok silex.Token, kw lexer.TokenType, cat Category) Category {
	c.curDecl = kw

	resolved := c.declare(tok.Value, cat)

	qualified := tok.Value
	if cat == Function {
		qualified = c.ns.Qualify(tok.Value)
	}

	c.decls = append(c.decls, Declaration{
		Name:      tok.Value,
		Category:  resolved,
		Qualified: qualified,
		Keyword:   c.prev.Value,
		Depth:     c.scopes.Depth() - 1,
		Span:      tok.Span,
	})

	return resolved
}

// declare records name in the current scope and returns the category it now resolves to.
// An earlier unresolved use of name keeps it unknown unless late declarations are on.
func (c *classifier) declare(name string, cat Category) Category {
	if !c.scopes.DeclareIfAbsent(name, cat) && c.lateDeclarations {
		c.scopes.ReplacePlaceholder(name, cat)
	}

	resolved, _ := c.scopes.Resolve(name)

	return resolved
}

// trackAngles follows generic type brackets inside parameter lists so that
// the comma in map<K, V> does not start a new parameter.
func (c *classifier) trackAngles(op string) {
	top := c.brackets.Top()
	if top == nil || (top.Kind != BracketDeclaration && top.Kind != BracketReceiver) {
		return
	}

	switch op {
	case "<":
		top.angles++
	case ">":
		top.angles = max(0, top.angles-1)
	case ">>":
		top.angles = max(0, top.angles-2) //nolint:mnd // two closing angles
	}
}

func (c *classifier) openParen(tok silex.Token) {
	if c.prev.Kind == silex.TokenFn {
		c.brackets.Push(&Bracket{Kind: BracketReceiver, Open: tok})

		return
	}

	if c.prev.Kind != silex.TokenIdent || c.prevCat != Function {
		c.brackets.Push(&Bracket{Kind: BracketGroup, Open: tok})

		return
	}

	frame := &CallFrame{Name: c.prev.Value, Span: c.prev.Span}

	if c.prevDecl == silex.TokenFn || c.prevDecl == silex.TokenEntry {
		c.brackets.Push(&Bracket{Kind: BracketDeclaration, Open: tok, Frame: frame, Method: c.prevMethod, expectArg: true})

		return
	}

	frame.Arities = c.prevArities
	c.brackets.Push(&Bracket{Kind: BracketCall, Open: tok, Frame: frame, expectArg: true})
}

func (c *classifier) closeParen(tok silex.Token) {
	b := c.brackets.Pop(silex.TokenRParen)
	if b == nil {
		c.stray = append(c.stray, tok.Span)

		return
	}

	switch b.Kind {
	case BracketCall:
		c.calls = append(c.calls, CallSite{
			Name:    b.Frame.Name,
			Span:    b.Frame.Span,
			Args:    b.Frame.Args,
			Arities: b.Frame.Arities,
		})
	case BracketDeclaration:
		if b.Method {
			c.funcs.RegisterMethod(b.Frame.Name, b.Frame.Args)
		} else {
			c.funcs.Register(c.ns.segments, b.Frame.Name, b.Frame.Args)
		}
	case BracketReceiver:
		c.afterReceiver = true
	default:
	}

	c.blocks = append(c.blocks, Block{Kind: b.Kind, Open: b.Open.Span, Close: tok.Span})
}

func (c *classifier) closeBracket(tok silex.Token) {
	b := c.brackets.Pop(silex.TokenRBracket)
	if b == nil {
		c.stray = append(c.stray, tok.Span)

		return
	}

	c.blocks = append(c.blocks, Block{Kind: b.Kind, Open: b.Open.Span, Close: tok.Span})
}

func (c *classifier) openBrace(tok silex.Token) {
	b := &Bracket{Kind: BracketBlock, Open: tok}

	if c.prev.Kind == silex.TokenIdent {
		switch c.prevCat {
		case Namespace:
			if cat, ok := c.scopes.Resolve(c.prev.Value); ok && cat == Namespace {
				b.Kind = BracketNamespaceBody
				b.Namespace = true
				c.ns.Push(c.prev.Value)
			}
		case Struct:
			b.Kind = BracketStructBody
		case Enum:
			if c.prevDecl == silex.TokenEnum {
				b.Kind = BracketEnumBody
			} else {
				b.Kind = BracketStructBody
			}
		default:
		}
	}

	c.scopes.Enter()
	c.brackets.Push(b)
}

func (c *classifier) closeBrace(tok silex.Token) {
	b := c.brackets.Pop(silex.TokenRBrace)
	if b == nil {
		c.stray = append(c.stray, tok.Span)

		return
	}

	c.scopes.Exit()

	if b.Namespace && c.scopedNamespaces {
		c.ns.Pop()
	}

	c.blocks = append(c.blocks, Block{Kind: b.Kind, Open: b.Open.Span, Close: tok.Span})
}

// unclosed returns the brackets still open at end of input.
func (c *classifier) unclosed() []Block {
	open := c.brackets.Unclosed()
	out := make([]Block, 0, len(open))

	for _, b := range open {
		out = append(out, Block{Kind: b.Kind, Open: b.Open.Span})
	}

	return out
}
