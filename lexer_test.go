package silex_test

import (
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/google/go-cmp/cmp"
	"gitlab.com/tozd/go/errors"

	"github.com/silex-lang/silex"
)

func TestLexer_Symbols(t *testing.T) {
	t.Parallel()

	symbols := silex.Symbols()

	expected := []string{
		"EOF", "Comment", "String", "Number", "Ident", "Op",
		"Dot", "Colon", "PathSep", "Arrow", "Comma", "Semi",
		"(", ")", "[", "]", "{", "}",
		"let", "fn", "entry", "namespace", "u256",
	}

	for _, name := range expected {
		if _, ok := symbols[name]; !ok {
			t.Errorf("missing symbol: %s", name)
		}
	}
}

type tokenExpect struct {
	typ string
	val string
}

func lexTokens(t *testing.T, input string) []tokenExpect {
	t.Helper()

	var tokens []tokenExpect

	for tok, err := range silex.Tokens("", input) {
		if err != nil {
			t.Fatalf("Tokens() error: %v", err)
		}

		tokens = append(tokens, tokenExpect{typ: silex.KindName(tok.Kind), val: tok.Value})
	}

	return tokens
}

func TestKindName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ  lexer.TokenType
		want string
	}{
		{silex.TokenIdent, "Ident"},
		{silex.TokenPathSep, "PathSep"},
		{silex.TokenFn, "fn"},
		{silex.TokenU256, "u256"},
		{silex.TokenLBrace, "{"},
	}

	for _, tt := range tests {
		if got := silex.KindName(tt.typ); got != tt.want {
			t.Errorf("KindName(%d) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestLexer_Tokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []tokenExpect
	}{
		{
			name:  "identifiers and keywords",
			input: "let x_1 import fn",
			want: []tokenExpect{
				{"let", "let"}, {"Ident", "x_1"}, {"Ident", "import"}, {"fn", "fn"},
			},
		},
		{
			name:  "numbers",
			input: "0 42 1_000 0xFF 7u8 9u256",
			want: []tokenExpect{
				{"Number", "0"}, {"Number", "42"}, {"Number", "1_000"},
				{"Number", "0xFF"}, {"Number", "7u8"}, {"Number", "9u256"},
			},
		},
		{
			name:  "strings",
			input: `"hello" "with \"escape\""`,
			want: []tokenExpect{
				{"String", `"hello"`}, {"String", `"with \"escape\""`},
			},
		},
		{
			name:  "multi-char operators",
			input: "<<= >>= ** && || == != <= >= << >> += -= *= /= %= ^= |= &=",
			want: []tokenExpect{
				{"Op", "<<="}, {"Op", ">>="}, {"Op", "**"}, {"Op", "&&"}, {"Op", "||"},
				{"Op", "=="}, {"Op", "!="}, {"Op", "<="}, {"Op", ">="}, {"Op", "<<"},
				{"Op", ">>"}, {"Op", "+="}, {"Op", "-="}, {"Op", "*="}, {"Op", "/="},
				{"Op", "%="}, {"Op", "^="}, {"Op", "|="}, {"Op", "&="},
			},
		},
		{
			name:  "single-char operators",
			input: "+ - * / % ^ & | ! < > = ?",
			want: []tokenExpect{
				{"Op", "+"}, {"Op", "-"}, {"Op", "*"}, {"Op", "/"}, {"Op", "%"},
				{"Op", "^"}, {"Op", "&"}, {"Op", "|"}, {"Op", "!"}, {"Op", "<"},
				{"Op", ">"}, {"Op", "="}, {"Op", "?"},
			},
		},
		{
			name:  "punctuation",
			input: "a::b.c -> (x, y); [z] {}",
			want: []tokenExpect{
				{"Ident", "a"}, {"PathSep", "::"}, {"Ident", "b"}, {"Dot", "."}, {"Ident", "c"},
				{"Arrow", "->"}, {"(", "("}, {"Ident", "x"}, {"Comma", ","}, {"Ident", "y"},
				{")", ")"}, {"Semi", ";"}, {"[", "["}, {"Ident", "z"}, {"]", "]"},
				{"{", "{"}, {"}", "}"},
			},
		},
		{
			name:  "comments",
			input: "a // line\n/* block\n */ b",
			want: []tokenExpect{
				{"Ident", "a"}, {"Comment", "// line"}, {"Ident", "b"},
			},
		},
		{
			name:  "type keywords",
			input: "bool string optional map blob u64",
			want: []tokenExpect{
				{"bool", "bool"}, {"string", "string"}, {"optional", "optional"},
				{"map", "map"}, {"blob", "blob"}, {"u64", "u64"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := lexTokens(t, tt.input)
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(tokenExpect{})); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTokens_Positions(t *testing.T) {
	t.Parallel()

	var got []silex.Token

	for tok, err := range silex.Tokens("test.slx", "let x\n  = \"é\";") {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got = append(got, tok)
	}

	type pos struct{ line, start, end int }

	want := []pos{{1, 1, 3}, {1, 5, 5}, {2, 3, 3}, {2, 5, 7}, {2, 8, 8}}

	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(got), len(want))
	}

	for i, tok := range got {
		p := pos{tok.Line(), tok.StartColumn(), tok.EndColumn()}
		if p != want[i] {
			t.Errorf("token %d %q at %+v, want %+v", i, tok.Value, p, want[i])
		}
	}
}

func TestTokens_LiteralWidth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  silex.LiteralWidth
	}{
		{"1", silex.WidthU64},
		{"1u8", silex.WidthU8},
		{"1u128", silex.WidthU128},
		{"0x10", silex.WidthU64},
	}

	for _, tt := range tests {
		for tok, err := range silex.Tokens("", tt.input) {
			if err != nil {
				t.Fatalf("%s: %v", tt.input, err)
			}

			if tok.Width != tt.want {
				t.Errorf("%s: width = %v, want %v", tt.input, tok.Width, tt.want)
			}
		}
	}
}

func TestTokens_ErrorsResume(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantErr   error
		wantCol   int
		wantWidth int
		wantAfter []string
	}{
		{"unexpected character", "a @ b", silex.ErrUnexpectedCharacter, 3, 1, []string{"a", "b"}},
		{"unterminated string", "\"abc\nb", silex.ErrUnterminatedString, 1, 4, []string{"b"}},
		{"invalid suffix", "1u7 b", silex.ErrInvalidNumberSuffix, 1, 3, []string{"b"}},
		{"unterminated comment", "a /* never closed", silex.ErrUnterminatedComment, 3, 2, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				values []string
				errs   []error
			)

			for tok, err := range silex.Tokens("", tt.input) {
				if err != nil {
					errs = append(errs, err)

					continue
				}

				values = append(values, tok.Value)
			}

			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
			}

			if !errors.Is(errs[0], tt.wantErr) {
				t.Errorf("error = %v, want %v", errs[0], tt.wantErr)
			}

			var lexErr *silex.LexerError
			if !errors.As(errs[0], &lexErr) {
				t.Fatalf("error is %T, want *LexerError", errs[0])
			}

			if lexErr.Position().Column != tt.wantCol || lexErr.Width() != tt.wantWidth {
				t.Errorf("error at column %d width %d, want %d width %d",
					lexErr.Position().Column, lexErr.Width(), tt.wantCol, tt.wantWidth)
			}

			if diff := cmp.Diff(tt.wantAfter, values); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToken_Classes(t *testing.T) {
	t.Parallel()

	if !silex.IsKeywordToken(silex.TokenLet) || !silex.IsKeywordToken(silex.TokenNamespace) {
		t.Error("IsKeywordToken misses statement keywords")
	}

	if silex.IsKeywordToken(silex.TokenBool) || silex.IsKeywordToken(silex.TokenIdent) {
		t.Error("IsKeywordToken accepts non-keywords")
	}

	if !silex.IsTypeToken(silex.TokenBool) || !silex.IsTypeToken(silex.TokenU256) || silex.IsTypeToken(silex.TokenTrue) {
		t.Error("IsTypeToken wrong")
	}

	if !silex.IsLiteralToken(silex.TokenNull) || silex.IsLiteralToken(silex.TokenIdent) {
		t.Error("IsLiteralToken wrong")
	}
}
