package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/silex-lang/silex/analysis"
)

// DocumentHighlight handles textDocument/documentHighlight requests.
// Highlights every token with the same text and category as the one under the cursor.
func (s *Server) DocumentHighlight(_ context.Context, params *protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	s.logger.Debug("DocumentHighlight",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	res, ok := s.getAnalysis(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	target, ok := analysis.TokenAt(res, params.Position.Line, params.Position.Character)
	if !ok || !hoverable(target.Category) || target.Category == analysis.Type {
		return nil, nil
	}

	var highlights []protocol.DocumentHighlight

	for _, tok := range res.Tokens {
		if tok.Text != target.Text || tok.Category != target.Category {
			continue
		}

		highlights = append(highlights, protocol.DocumentHighlight{
			Range: tokenRange(tok),
			Kind:  protocol.DocumentHighlightKindText,
		})
	}

	return highlights, nil
}
