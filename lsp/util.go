package lsp

import (
	"strings"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/silex-lang/silex"
)

// spanToRange converts a silex.Span to an LSP protocol.Range.
// Spans use 1-based lines and columns with an inclusive end column;
// LSP uses 0-based positions with an exclusive end.
func spanToRange(span silex.Span) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{
			Line:      uint32(max(0, span.Start.Line-1)),   //nolint:gosec // G115: values are small line numbers
			Character: uint32(max(0, span.Start.Column-1)), //nolint:gosec // G115: values are small column numbers
		},
		End: protocol.Position{
			Line:      uint32(max(0, span.End.Line-1)), //nolint:gosec // G115: values are small line numbers
			Character: uint32(max(0, span.End.Column)), //nolint:gosec // G115: values are small column numbers
		},
	}
}

// URIToPath converts a file:// URI to a filesystem path.
// Other schemes are returned unchanged.
func URIToPath(u protocol.DocumentURI) string {
	if !strings.HasPrefix(string(u), uri.FileScheme+"://") {
		return string(u)
	}

	return uri.URI(u).Filename()
}
