package lsp

import (
	"context"
	"slices"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/silex-lang/silex/analysis"
)

// FoldingRanges handles textDocument/foldingRange requests.
// Returns a range for every brace block spanning more than one line and for
// runs of consecutive line comments.
func (s *Server) FoldingRanges(_ context.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	s.logger.Debug("FoldingRanges",
		zap.String("uri", string(params.TextDocument.URI)))

	res, ok := s.getAnalysis(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	ranges := blockFoldingRanges(res.Blocks)
	ranges = append(ranges, commentFoldingRanges(res.Tokens)...)

	slices.SortFunc(ranges, func(a, b protocol.FoldingRange) int {
		return int(a.StartLine) - int(b.StartLine)
	})

	return ranges, nil
}

func blockFoldingRanges(blocks []analysis.Block) []protocol.FoldingRange {
	var ranges []protocol.FoldingRange

	for _, b := range blocks {
		if !b.Kind.IsBrace() || b.Close.Start.Line <= b.Open.Start.Line {
			continue
		}

		ranges = append(ranges, protocol.FoldingRange{
			StartLine: uint32(b.Open.Start.Line - 1),  //nolint:gosec
			EndLine:   uint32(b.Close.Start.Line - 1), //nolint:gosec
			Kind:      protocol.RegionFoldingRange,
		})
	}

	return ranges
}

func commentFoldingRanges(tokens []analysis.SemanticToken) []protocol.FoldingRange {
	var (
		ranges     []protocol.FoldingRange
		start, end uint32
		inRun      bool
	)

	flush := func() {
		if inRun && end > start {
			ranges = append(ranges, protocol.FoldingRange{
				StartLine: start,
				EndLine:   end,
				Kind:      protocol.CommentFoldingRange,
			})
		}

		inRun = false
	}

	for _, t := range tokens {
		if t.Category != analysis.Comment {
			flush()

			continue
		}

		if inRun && t.Line == end+1 {
			end = t.Line

			continue
		}

		flush()

		start, end, inRun = t.Line, t.Line, true
	}

	flush()

	return ranges
}
