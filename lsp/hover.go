package lsp

import (
	"context"
	"fmt"
	"strings"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/silex-lang/silex/analysis"
)

// Hover handles textDocument/hover requests.
// It shows the category of the token under the cursor and, for functions,
// the argument counts the function accepts.
func (s *Server) Hover(_ context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	s.logger.Debug("Hover",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	res, ok := s.getAnalysis(params.TextDocument.URI)
	if !ok {
		return nil, nil //nolint:nilnil
	}

	tok, ok := analysis.TokenAt(res, params.Position.Line, params.Position.Character)
	if !ok || !hoverable(tok.Category) {
		return nil, nil //nolint:nilnil
	}

	content := s.hoverContent(res, tok)

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: content,
		},
		Range: rangePtr(tokenRange(tok)),
	}, nil
}

func hoverable(cat analysis.Category) bool {
	switch cat {
	case analysis.Function, analysis.Variable, analysis.Parameter, analysis.Namespace,
		analysis.Struct, analysis.Enum, analysis.Type, analysis.UnknownIdentifier:
		return true
	default:
		return false
	}
}

// hoverContent generates hover markdown for a token.
func (s *Server) hoverContent(r *analysis.Result, tok analysis.SemanticToken) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**%s** `%s`", categoryLabel(tok.Category), tok.Text)

	if tok.Category != analysis.Function {
		return b.String()
	}

	call, isCall := analysis.CallAt(r, tok.Line, tok.StartChar)

	arities := call.Arities
	if arities == nil {
		arities = s.lookupArities(tok.Text)
	}

	if arities != nil {
		fmt.Fprintf(&b, "\n\nAccepts %s %s", arities, plural(arities, "argument"))
	}

	if isCall {
		fmt.Fprintf(&b, "\n\nCalled with %d %s", call.Args, plural(analysis.Arityset{call.Args}, "argument"))
	}

	return b.String()
}

// lookupArities finds name among the known free functions, then methods.
func (s *Server) lookupArities(name string) analysis.Arityset {
	s.mu.RLock()
	registry := s.currentAnalyzer().Registry()
	s.mu.RUnlock()

	if a, ok := registry.Lookup(analysis.NoReceiver, nil, name); ok {
		return a
	}

	if a, ok := registry.LookupMethod(name); ok {
		return a
	}

	return nil
}

func categoryLabel(cat analysis.Category) string {
	switch cat {
	case analysis.UnknownIdentifier:
		return "unknown identifier"
	case analysis.VariableDeclarationAccessory:
		return "keyword"
	default:
		return cat.String()
	}
}

func plural(a analysis.Arityset, word string) string {
	if len(a) == 1 && a[0] == 1 {
		return word
	}

	return word + "s"
}

func tokenRange(tok analysis.SemanticToken) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: tok.Line, Character: tok.StartChar},
		End:   protocol.Position{Line: tok.Line, Character: tok.StartChar + tok.Length},
	}
}

func rangePtr(r protocol.Range) *protocol.Range {
	return &r
}
