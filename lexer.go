package silex

import (
	"iter"
	"maps"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer errors.
var (
	ErrUnterminatedString  = &LexerError{msg: "unterminated string"}
	ErrUnterminatedComment = &LexerError{msg: "unterminated block comment"}
	ErrUnexpectedCharacter = &LexerError{msg: "unexpected character"}
	ErrInvalidNumberSuffix = &LexerError{msg: "invalid number suffix"}
)

// LexerError represents a lexer error with position.
type LexerError struct {
	msg string
	pos lexer.Position
	ch  rune
	// width is the number of columns covered by the offending input.
	width int
}

func (e *LexerError) Error() string {
	return e.pos.String() + ": " + e.Message()
}

// Message returns the error text without the position prefix.
func (e *LexerError) Message() string {
	if e.ch != 0 {
		return e.msg + ": " + string(e.ch)
	}

	return e.msg
}

// Position returns where the error occurred.
func (e *LexerError) Position() lexer.Position {
	return e.pos
}

// Width returns the number of columns covered by the offending input (at least 1).
func (e *LexerError) Width() int {
	return max(1, e.width)
}

// Is matches lexer errors of the same kind regardless of position.
func (e *LexerError) Is(target error) bool {
	t, ok := target.(*LexerError)

	return ok && t.msg == e.msg
}

func (e *LexerError) at(pos lexer.Position, width int) *LexerError {
	return &LexerError{msg: e.msg, pos: pos, ch: e.ch, width: width}
}

func (e *LexerError) withChar(ch rune) *LexerError {
	return &LexerError{msg: e.msg, pos: e.pos, ch: ch, width: e.width}
}

// symbols names every token type the way participle lexer definitions do.
var symbols = func() map[string]lexer.TokenType {
	m := map[string]lexer.TokenType{
		"EOF":     TokenEOF,
		"Comment": TokenComment,
		"String":  TokenString,
		"Number":  TokenNumber,
		"Ident":   TokenIdent,
		"Op":      TokenOp,
		"Dot":     TokenDot,
		"Colon":   TokenColon,
		"PathSep": TokenPathSep,
		"Arrow":   TokenArrow,
		"Comma":   TokenComma,
		"Semi":    TokenSemi,
		"(":       TokenLParen,
		")":       TokenRParen,
		"[":       TokenLBracket,
		"]":       TokenRBracket,
		"{":       TokenLBrace,
		"}":       TokenRBrace,
	}

	for word, typ := range keywords {
		m[word] = typ
	}

	return m
}()

var kindNames = func() map[lexer.TokenType]string {
	m := make(map[lexer.TokenType]string, len(symbols))
	for name, typ := range symbols {
		m[typ] = name
	}

	return m
}()

// Symbols returns the mapping of symbol names to token types.
func Symbols() map[string]lexer.TokenType {
	return maps.Clone(symbols)
}

// KindName returns the symbol name of a token type, such as "Ident" or "fn".
func KindName(typ lexer.TokenType) string {
	return kindNames[typ]
}

// Tokens lexes src lazily. Each element is either a token or a *LexerError;
// lexing resumes after an error, so a single bad character does not hide the
// rest of the document. Whitespace and block comments are skipped.
func Tokens(filename, src string) iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		l := newLexerState(filename, src)

		for {
			tok, err := l.scan()
			if err != nil {
				if !yield(Token{}, err) {
					return
				}

				continue
			}

			if tok.Kind == TokenEOF {
				return
			}

			if !yield(tok, nil) {
				return
			}
		}
	}
}

// lexerState holds the state for lexing.
type lexerState struct {
	filename string
	input    string
	offset   int
	line     int
	col      int
}

func newLexerState(filename, input string) *lexerState {
	return &lexerState{
		filename: filename,
		input:    input,
		offset:   0,
		line:     1,
		col:      1,
	}
}

func (l *lexerState) scan() (Token, error) {
	if err := l.skipTrivia(); err != nil {
		return Token{}, err
	}

	if l.eof() {
		pos := l.pos()

		return Token{Kind: TokenEOF, Span: Span{Start: pos, End: pos}}, nil
	}

	start := l.pos()
	r := l.peek()

	if r == '/' && l.peekAt(1) == '/' {
		for !l.eof() && l.peek() != '\n' && l.peek() != '\r' {
			l.advance()
		}

		return l.token(TokenComment, start), nil
	}

	if r == '"' {
		return l.scanString(start)
	}

	if isDigit(r) {
		return l.scanNumber(start)
	}

	if isIdentStart(r) {
		l.advance()

		for !l.eof() && isIdentContinue(l.peek()) {
			l.advance()
		}

		tok := l.token(TokenIdent, start)
		if kwType, isKeyword := keywords[tok.Value]; isKeyword {
			tok.Kind = kwType
		}

		return tok, nil
	}

	if tok, ok := l.scanMultiCharOp(start); ok {
		return tok, nil
	}

	l.advance()

	switch r {
	case '.':
		return l.token(TokenDot, start), nil
	case ':':
		return l.token(TokenColon, start), nil
	case ',':
		return l.token(TokenComma, start), nil
	case ';':
		return l.token(TokenSemi, start), nil
	case '(':
		return l.token(TokenLParen, start), nil
	case ')':
		return l.token(TokenRParen, start), nil
	case '[':
		return l.token(TokenLBracket, start), nil
	case ']':
		return l.token(TokenRBracket, start), nil
	case '{':
		return l.token(TokenLBrace, start), nil
	case '}':
		return l.token(TokenRBrace, start), nil
	}

	if strings.ContainsRune("+-*/%^&|!<>=?", r) {
		return l.token(TokenOp, start), nil
	}

	return Token{}, ErrUnexpectedCharacter.at(start, l.col-start.Column).withChar(r)
}

// skipTrivia consumes whitespace and block comments.
func (l *lexerState) skipTrivia() error {
	for !l.eof() {
		r := l.peek()

		if isSpace(r) {
			l.advance()

			continue
		}

		if r == '/' && l.peekAt(1) == '*' {
			start := l.pos()

			l.advance() // /
			l.advance() // *

			for !l.match("*/") {
				if l.eof() {
					return ErrUnterminatedComment.at(start, 2) //nolint:mnd // width of "/*"
				}

				l.advance()
			}

			l.advance() // *
			l.advance() // /

			continue
		}

		return nil
	}

	return nil
}

func (l *lexerState) pos() lexer.Position {
	return lexer.Position{
		Filename: l.filename,
		Offset:   l.offset,
		Line:     l.line,
		Column:   l.col,
	}
}

func (l *lexerState) eof() bool {
	return l.offset >= len(l.input)
}

func (l *lexerState) peek() rune {
	if l.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])

	return r
}

func (l *lexerState) peekAt(n int) rune {
	off := l.offset + n
	if off >= len(l.input) {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[off:])

	return r
}

// advance consumes one rune. Columns advance by the rune's UTF-16 length so
// they line up with LSP positions.
func (l *lexerState) advance() {
	if l.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(l.input[l.offset:])
	l.offset += size

	if r == '\n' {
		l.line++
		l.col = 1

		return
	}

	l.col += max(1, utf16.RuneLen(r))
}

func (l *lexerState) match(s string) bool {
	return strings.HasPrefix(l.input[l.offset:], s)
}

func (l *lexerState) token(typ lexer.TokenType, start lexer.Position) Token {
	return Token{
		Kind:  typ,
		Value: l.input[start.Offset:l.offset],
		Span: Span{
			Start: start,
			End: lexer.Position{
				Filename: l.filename,
				Offset:   l.offset,
				Line:     l.line,
				Column:   l.col - 1,
			},
		},
	}
}

func (l *lexerState) scanString(start lexer.Position) (Token, error) {
	l.advance() // opening quote

	for !l.eof() {
		ch := l.peek()
		if ch == '\\' && l.peekAt(1) != 0 && l.peekAt(1) != '\n' {
			l.advance() // backslash
			l.advance() // escaped char

			continue
		}

		if ch == '"' {
			l.advance() // closing quote

			return l.token(TokenString, start), nil
		}

		if ch == '\n' || ch == '\r' {
			break
		}

		l.advance()
	}

	return Token{}, ErrUnterminatedString.at(start, l.col-start.Column)
}

func (l *lexerState) scanMultiCharOp(start lexer.Position) (Token, bool) {
	if l.match("::") {
		l.advance()
		l.advance()

		return l.token(TokenPathSep, start), true
	}

	if l.match("->") {
		l.advance()
		l.advance()

		return l.token(TokenArrow, start), true
	}

	multiOps := []string{
		"<<=", ">>=",
		"**", "&&", "||", "==", "!=", "<=", ">=", "<<", ">>",
		"+=", "-=", "*=", "/=", "%=", "^=", "|=", "&=",
	}

	for _, op := range multiOps {
		if l.match(op) {
			for range len(op) {
				l.advance()
			}

			return l.token(TokenOp, start), true
		}
	}

	return Token{}, false
}

func (l *lexerState) scanNumber(start lexer.Position) (Token, error) {
	if l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		l.advance() // 0
		l.advance() // x

		for !l.eof() && (isHexDigit(l.peek()) || l.peek() == '_') {
			l.advance()
		}

		tok := l.token(TokenNumber, start)
		tok.Width = WidthU64

		return tok, nil
	}

	for !l.eof() && (isDigit(l.peek()) || l.peek() == '_') {
		l.advance()
	}

	width := WidthU64

	if isIdentStart(l.peek()) {
		suffixStart := l.offset

		for !l.eof() && isIdentContinue(l.peek()) {
			l.advance()
		}

		w, ok := widthSuffixes[l.input[suffixStart:l.offset]]
		if !ok {
			return Token{}, ErrInvalidNumberSuffix.at(start, l.col-start.Column)
		}

		width = w
	}

	tok := l.token(TokenNumber, start)
	tok.Width = width

	return tok, nil
}

// Character helpers.

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
