// Package silex provides the lexer, token model and configuration for the Silex language tooling.
package silex

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Token type constants - negative values as per participle convention.
const (
	TokenEOF     lexer.TokenType = lexer.EOF
	TokenComment lexer.TokenType = -(iota + 2) //nolint:mnd // participle convention
	TokenString                                // quoted strings
	TokenNumber                                // integers with optional width suffix
	TokenIdent                                 // identifiers
	TokenOp                                    // operators
	TokenDot                                   // .
	TokenColon                                 // :
	TokenPathSep                               // ::
	TokenArrow                                 // ->
	TokenComma                                 // ,
	TokenSemi                                  // ;
	TokenLParen                                // (
	TokenRParen                                // )
	TokenLBracket                              // [
	TokenRBracket                              // ]
	TokenLBrace                                // {
	TokenRBrace                                // }
	// Statement and declaration keywords
	TokenLet
	TokenConst
	TokenFn
	TokenEntry
	TokenStruct
	TokenEnum
	TokenFor
	TokenForEach
	TokenWhile
	TokenIf
	TokenElse
	TokenReturn
	TokenContinue
	TokenBreak
	TokenAs
	TokenIn
	TokenNamespace
	// Primitive type keywords
	TokenBool
	TokenStringType
	TokenOptional
	TokenMap
	TokenBlob
	TokenU8
	TokenU16
	TokenU32
	TokenU64
	TokenU128
	TokenU256
	// Literal keywords
	TokenTrue
	TokenFalse
	TokenNull
)

// keywords maps keyword strings to their token types.
// "import" is deliberately absent: it is lexed as an identifier.
var keywords = map[string]lexer.TokenType{
	"let":       TokenLet,
	"const":     TokenConst,
	"fn":        TokenFn,
	"entry":     TokenEntry,
	"struct":    TokenStruct,
	"enum":      TokenEnum,
	"for":       TokenFor,
	"foreach":   TokenForEach,
	"while":     TokenWhile,
	"if":        TokenIf,
	"else":      TokenElse,
	"return":    TokenReturn,
	"continue":  TokenContinue,
	"break":     TokenBreak,
	"as":        TokenAs,
	"in":        TokenIn,
	"namespace": TokenNamespace,
	"bool":      TokenBool,
	"string":    TokenStringType,
	"optional":  TokenOptional,
	"map":       TokenMap,
	"blob":      TokenBlob,
	"u8":        TokenU8,
	"u16":       TokenU16,
	"u32":       TokenU32,
	"u64":       TokenU64,
	"u128":      TokenU128,
	"u256":      TokenU256,
	"true":      TokenTrue,
	"false":     TokenFalse,
	"null":      TokenNull,
}

// LiteralWidth is the declared width of a numeric literal.
type LiteralWidth uint8

// Literal width constants. Integers without a suffix are u64.
const (
	WidthNone LiteralWidth = iota
	WidthU8
	WidthU16
	WidthU32
	WidthU64
	WidthU128
	WidthU256
)

var widthSuffixes = map[string]LiteralWidth{
	"u8":   WidthU8,
	"u16":  WidthU16,
	"u32":  WidthU32,
	"u64":  WidthU64,
	"u128": WidthU128,
	"u256": WidthU256,
}

func (w LiteralWidth) String() string {
	switch w {
	case WidthU8:
		return "u8"
	case WidthU16:
		return "u16"
	case WidthU32:
		return "u32"
	case WidthU64:
		return "u64"
	case WidthU128:
		return "u128"
	case WidthU256:
		return "u256"
	default:
		return ""
	}
}

// Token is a positioned lexical unit produced by the lexer.
// Span.End is the position of the last character (inclusive).
type Token struct {
	Kind  lexer.TokenType
	Value string
	Span  Span
	Width LiteralWidth
}

// Line returns the 1-based line of the token.
func (t Token) Line() int {
	return t.Span.Start.Line
}

// StartColumn returns the 1-based column of the first character.
func (t Token) StartColumn() int {
	return t.Span.Start.Column
}

// EndColumn returns the 1-based column of the last character (inclusive).
func (t Token) EndColumn() int {
	return t.Span.End.Column
}

func (t Token) String() string {
	return t.Value
}

// IsOperator reports whether the token is an operator.
func (t Token) IsOperator() bool {
	return t.Kind == TokenOp
}

// IsKeywordToken returns true if the token type is a statement or declaration keyword.
func IsKeywordToken(typ lexer.TokenType) bool {
	return typ <= TokenLet && typ >= TokenNamespace
}

// IsTypeToken returns true if the token type is a primitive type keyword.
func IsTypeToken(typ lexer.TokenType) bool {
	return typ <= TokenBool && typ >= TokenU256
}

// IsLiteralToken returns true for string, number, boolean and null literals.
func IsLiteralToken(typ lexer.TokenType) bool {
	switch typ {
	case TokenString, TokenNumber, TokenTrue, TokenFalse, TokenNull:
		return true
	default:
		return false
	}
}
