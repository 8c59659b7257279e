package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/silex-lang/silex/analysis"
)

// semanticTokensOptions is the semanticTokensProvider capability.
// protocol v0.12.0's SemanticTokensOptions has no legend field.
type semanticTokensOptions struct {
	Legend protocol.SemanticTokensLegend `json:"legend"`
	Full   bool                          `json:"full"`
	Range  bool                          `json:"range"`
}

// semanticTokensLegend builds the legend from the category table so that the
// advertised indices match the emitted ones.
func semanticTokensLegend() protocol.SemanticTokensLegend {
	names := analysis.Legend()
	types := make([]protocol.SemanticTokenTypes, len(names))

	for i, name := range names {
		types[i] = protocol.SemanticTokenTypes(name)
	}

	return protocol.SemanticTokensLegend{
		TokenTypes:     types,
		TokenModifiers: []protocol.SemanticTokenModifiers{},
	}
}

// SemanticTokensFull handles textDocument/semanticTokens/full.
// The document is re-analyzed and its diagnostics are published as well.
func (s *Server) SemanticTokensFull(ctx context.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	s.logger.Debug("SemanticTokensFull", zap.String("uri", string(params.TextDocument.URI)))

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[params.TextDocument.URI]
	if !ok {
		return &protocol.SemanticTokens{Data: []uint32{}}, nil
	}

	s.analyze(ctx, doc)
	s.publishDiagnostics(ctx, doc)

	if doc.Analysis == nil {
		return &protocol.SemanticTokens{Data: []uint32{}}, nil
	}

	return &protocol.SemanticTokens{Data: doc.Analysis.Data}, nil
}

// SemanticTokensRange handles textDocument/semanticTokens/range using the last analysis.
func (s *Server) SemanticTokensRange(_ context.Context, params *protocol.SemanticTokensRangeParams) (*protocol.SemanticTokens, error) {
	s.logger.Debug("SemanticTokensRange",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("start", params.Range.Start.Line),
		zap.Uint32("end", params.Range.End.Line))

	res, ok := s.getAnalysis(params.TextDocument.URI)
	if !ok {
		return &protocol.SemanticTokens{Data: []uint32{}}, nil
	}

	data := analysis.EncodeRange(res.Tokens, params.Range.Start.Line, params.Range.End.Line)

	return &protocol.SemanticTokens{Data: data}, nil
}
