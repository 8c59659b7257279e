package analysis

import (
	"context"
	"iter"

	"gitlab.com/tozd/go/errors"

	"github.com/silex-lang/silex"
)

// emitter drives one pass: it pulls tokens from the lexer, asks the classifier
// for their category and records semantic tokens and diagnostics.
type emitter struct {
	classifier   *classifier
	emitUnmapped bool

	tokens      []SemanticToken
	diagnostics []Diagnostic
}

func (e *emitter) run(ctx context.Context, tokens iter.Seq2[silex.Token, error]) error {
	for tok, lexErr := range tokens {
		if err := ctx.Err(); err != nil {
			return err
		}

		if lexErr != nil {
			e.syntaxError(lexErr)

			continue
		}

		e.emit(tok, e.classifier.classify(tok))
	}

	return ctx.Err()
}

func (e *emitter) emit(tok silex.Token, cat Category) {
	if cat == UnknownIdentifier {
		e.diagnostics = append(e.diagnostics, Diagnostic{
			Span:     tok.Span,
			Severity: SeverityError,
			Message:  "Unknown identifier: '" + tok.Value + "'",
			Code:     CodeUnknownIdentifier,
			Source:   Source,
		})
	}

	if !cat.InLegend() && !e.emitUnmapped {
		return
	}

	e.tokens = append(e.tokens, newSemanticToken(tok, cat))
}

func (e *emitter) syntaxError(err error) {
	d := Diagnostic{
		Severity: SeverityError,
		Message:  err.Error(),
		Code:     CodeSyntaxError,
		Source:   Source,
	}

	var lexErr *silex.LexerError
	if errors.As(err, &lexErr) {
		pos := lexErr.Position()
		end := pos
		end.Column = pos.Column + lexErr.Width() - 1
		d.Span = silex.Span{Start: pos, End: end}
		d.Message = lexErr.Message()
	}

	e.diagnostics = append(e.diagnostics, d)
}

func newSemanticToken(tok silex.Token, cat Category) SemanticToken {
	//nolint:gosec // positions are 1-based and never negative
	return SemanticToken{
		Line:      uint32(tok.Line() - 1),
		StartChar: uint32(tok.StartColumn() - 1),
		Length:    uint32(tok.EndColumn() - tok.StartColumn() + 1),
		Category:  cat,
		Text:      tok.Value,
		Kind:      silex.KindName(tok.Kind),
	}
}

// Encode converts tokens to the LSP relative encoding: five integers per token,
// (deltaLine, deltaStart, length, tokenType, modifiers). deltaStart is relative
// to the previous token on the same line and absolute on a new line.
func Encode(tokens []SemanticToken) []uint32 {
	data := make([]uint32, 0, len(tokens)*5) //nolint:mnd // five integers per token

	var prevLine, prevStart uint32

	for _, t := range tokens {
		deltaLine := t.Line - prevLine

		deltaStart := t.StartChar
		if deltaLine == 0 {
			deltaStart = t.StartChar - prevStart
		}

		data = append(data, deltaLine, deltaStart, t.Length, uint32(t.Category), t.Modifiers)
		prevLine, prevStart = t.Line, t.StartChar
	}

	return data
}

// EncodeRange encodes the tokens on 0-based lines startLine through endLine inclusive.
// The first token in range is encoded relative to the document start.
func EncodeRange(tokens []SemanticToken, startLine, endLine uint32) []uint32 {
	var in []SemanticToken

	for _, t := range tokens {
		if t.Line > endLine {
			break
		}

		if t.Line >= startLine {
			in = append(in, t)
		}
	}

	return Encode(in)
}
