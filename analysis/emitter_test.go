package analysis_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/silex-lang/silex/analysis"
)

func TestEncode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tokens []analysis.SemanticToken
		want   []uint32
	}{
		{
			name: "same line is relative",
			tokens: []analysis.SemanticToken{
				{Line: 0, StartChar: 0, Length: 3, Category: analysis.Keyword},
				{Line: 0, StartChar: 4, Length: 3, Category: analysis.Variable},
			},
			want: []uint32{0, 0, 3, 0, 0, 0, 4, 3, 2, 0},
		},
		{
			name: "new line is absolute",
			tokens: []analysis.SemanticToken{
				{Line: 2, StartChar: 8, Length: 1, Category: analysis.Number},
				{Line: 5, StartChar: 4, Length: 2, Category: analysis.Operator},
			},
			want: []uint32{2, 8, 1, 5, 0, 3, 4, 2, 6, 0},
		},
		{
			name: "empty",
			want: []uint32{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tt.want, analysis.Encode(tt.tokens)); diff != "" {
				t.Errorf("Encode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeRange(t *testing.T) {
	t.Parallel()

	tokens := []analysis.SemanticToken{
		{Line: 0, StartChar: 0, Length: 1},
		{Line: 3, StartChar: 2, Length: 1, Category: analysis.Function},
		{Line: 3, StartChar: 6, Length: 2, Category: analysis.Variable},
		{Line: 9, StartChar: 0, Length: 1},
	}

	want := []uint32{3, 2, 1, 1, 0, 0, 4, 2, 2, 0}

	if diff := cmp.Diff(want, analysis.EncodeRange(tokens, 1, 5)); diff != "" {
		t.Errorf("EncodeRange() mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzer_UTF16Columns(t *testing.T) {
	t.Parallel()

	// "é" is one UTF-16 unit, the emoji is two.
	result := analyze(t, `let s = "é😀"; s;`)

	var str, ident analysis.SemanticToken

	for _, tok := range result.Tokens {
		switch tok.Category {
		case analysis.String:
			str = tok
		case analysis.Variable:
			ident = tok
		default:
		}
	}

	if str.StartChar != 8 || str.Length != 5 {
		t.Errorf("string token = %+v, want start 8 length 5", str)
	}

	if ident.StartChar != 15 {
		t.Errorf("last identifier starts at %d, want 15", ident.StartChar)
	}
}
