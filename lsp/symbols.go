package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/silex-lang/silex"
	"github.com/silex-lang/silex/analysis"
)

// DocumentSymbol handles textDocument/documentSymbol requests.
// Returns a hierarchical tree of declarations for the outline view.
func (s *Server) DocumentSymbol(_ context.Context, params *protocol.DocumentSymbolParams) ([]any, error) {
	s.logger.Debug("DocumentSymbol",
		zap.String("uri", string(params.TextDocument.URI)))

	res, ok := s.getAnalysis(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	symbols := buildDocumentSymbols(res)

	// Convert to []any for the protocol
	result := make([]any, len(symbols))
	for i, sym := range symbols {
		result[i] = sym
	}

	return result, nil
}

// buildDocumentSymbols nests each declaration under the closest preceding
// declaration whose body encloses it.
func buildDocumentSymbols(r *analysis.Result) []protocol.DocumentSymbol {
	type node struct {
		sym  protocol.DocumentSymbol
		body silex.Span
		kids []int
	}

	nodes := make([]node, len(r.Declarations))

	var roots, open []int

	for i, d := range r.Declarations {
		nodes[i].sym = protocol.DocumentSymbol{
			Name:           d.Name,
			Detail:         symbolDetail(d),
			Kind:           symbolKind(d),
			Range:          spanToRange(d.Span),
			SelectionRange: spanToRange(d.Span),
		}

		if body, ok := declarationBody(r.Blocks, d); ok {
			nodes[i].body = body
			nodes[i].sym.Range = spanToRange(silex.Span{Start: d.Span.Start, End: body.End})
		}

		for len(open) > 0 && !encloses(nodes[open[len(open)-1]].body, d.Span) {
			open = open[:len(open)-1]
		}

		if len(open) == 0 {
			roots = append(roots, i)
		} else {
			parent := open[len(open)-1]
			nodes[parent].kids = append(nodes[parent].kids, i)
		}

		if nodes[i].body != (silex.Span{}) {
			open = append(open, i)
		}
	}

	var build func(i int) protocol.DocumentSymbol

	build = func(i int) protocol.DocumentSymbol {
		sym := nodes[i].sym
		for _, k := range nodes[i].kids {
			sym.Children = append(sym.Children, build(k))
		}

		return sym
	}

	symbols := make([]protocol.DocumentSymbol, 0, len(roots))
	for _, i := range roots {
		symbols = append(symbols, build(i))
	}

	return symbols
}

// declarationBody finds the brace block that opens first after a function,
// struct, enum or namespace declaration.
func declarationBody(blocks []analysis.Block, d analysis.Declaration) (silex.Span, bool) {
	switch d.Keyword {
	case "fn", "entry", "struct", "enum", "namespace":
	default:
		return silex.Span{}, false
	}

	var (
		best  analysis.Block
		found bool
	)

	for _, b := range blocks {
		if !b.Kind.IsBrace() || b.Open.Start.Offset < d.Span.End.Offset {
			continue
		}

		if !found || b.Open.Start.Offset < best.Open.Start.Offset {
			best, found = b, true
		}
	}

	if !found {
		return silex.Span{}, false
	}

	return silex.Span{Start: best.Open.Start, End: best.Close.End}, true
}

func encloses(body, span silex.Span) bool {
	if body == (silex.Span{}) {
		return false
	}

	return span.Start.Offset > body.Start.Offset && span.End.Offset < body.End.Offset
}

func symbolKind(d analysis.Declaration) protocol.SymbolKind {
	switch d.Keyword {
	case "fn", "entry":
		if d.Method {
			return protocol.SymbolKindMethod
		}

		return protocol.SymbolKindFunction
	case "struct":
		return protocol.SymbolKindStruct
	case "enum":
		return protocol.SymbolKindEnum
	case "namespace":
		return protocol.SymbolKindNamespace
	case "const":
		return protocol.SymbolKindConstant
	default:
		return protocol.SymbolKindVariable
	}
}

func symbolDetail(d analysis.Declaration) string {
	if d.Qualified == "" || d.Qualified == d.Name {
		return d.Keyword
	}

	return d.Keyword + " " + d.Qualified
}
