package script

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// BoardLexer defines the tokens of the board definition language.
// Newlines carry no meaning; statements are recognised by their keyword.
var BoardLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments - shell (#) and C++ (//) style, to end of line
	{Name: "Comment", Pattern: `(?:#|//)[^\n]*`},

	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},

	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Number", Pattern: `[-+]?[0-9]+(?:\.[0-9]+)?`},

	// Keywords are matched by value in the grammar, so they lex as Ident
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},

	{Name: "Punct", Pattern: `[(),.=]`},
})
