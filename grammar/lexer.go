package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var FrostLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Comments
		{Name: "Comment", Pattern: `//[^\n]*`, Action: nil},

		// Instruction values: %x, %self, %Linear.weight, %y.1
		{Name: "Value", Pattern: `%[a-zA-Z_][a-zA-Z0-9_.]*`, Action: nil},

		// String literals
		{Name: "String", Pattern: `"(\\.|[^"\\])*"`, Action: nil},

		// Float must come before Int so "2.5" is not split. Inf and NaN
		// appear in dumps of folded arithmetic.
		{Name: "Float", Pattern: `-?[0-9]+\.[0-9]+([eE][-+]?[0-9]+)?|-?[0-9]+[eE][-+]?[0-9]+|[-+]?Inf|NaN`, Action: nil},

		// Integer literals
		{Name: "Int", Pattern: `-?[0-9]+`, Action: nil},

		// Keywords and identifiers
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`, Action: nil},

		// Punctuation
		{Name: "Punct", Pattern: `[{}()\[\],:=]`, Action: nil},

		// Whitespace
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`, Action: nil},
	},
})
