package analysis

import (
	"gitlab.com/tozd/go/errors"
)

// Category is the semantic classification of a token. Its numeric value is the
// token type id sent to editors, so the order of the constants is part of the
// legend and must not change.
type Category uint32

// Category constants, in legend order.
const (
	Keyword Category = iota
	Function
	Variable
	String
	Literal
	Number
	Operator
	Comment
	Type
	Namespace
	Parameter
	UnknownIdentifier
	VariableDeclarationAccessory
	Struct
	Enum
)

// Other marks tokens with no semantic meaning (punctuation). It is outside the legend.
const Other Category = 255

// ErrUnknownCategory is returned by ParseCategory for names outside the legend.
var ErrUnknownCategory = errors.New("unknown category")

var legend = [...]string{
	Keyword:                      "keyword",
	Function:                     "function",
	Variable:                     "variable",
	String:                       "string",
	Literal:                      "literal",
	Number:                       "number",
	Operator:                     "operator",
	Comment:                      "comment",
	Type:                         "type",
	Namespace:                    "namespace",
	Parameter:                    "parameter",
	UnknownIdentifier:            "unknownId",
	VariableDeclarationAccessory: "varDeclItem",
	Struct:                       "struct",
	Enum:                         "enum",
}

// Legend returns the token type names indexed by category id.
func Legend() []string {
	out := make([]string, len(legend))
	copy(out, legend[:])

	return out
}

// InLegend reports whether c has an entry in the legend.
func (c Category) InLegend() bool {
	return int(c) < len(legend)
}

func (c Category) String() string {
	if c.InLegend() {
		return legend[c]
	}

	return "other"
}

// ParseCategory returns the category with the given legend name.
// "other" maps to Other.
func ParseCategory(name string) (Category, error) {
	for i, n := range legend {
		if n == name {
			return Category(i), nil //nolint:gosec // legend has fewer than 2^32 entries
		}
	}

	if name == "other" {
		return Other, nil
	}

	return 0, errors.Errorf("%w: %q", ErrUnknownCategory, name)
}
