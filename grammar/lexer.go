package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// cypherLexer tokenizes Cypher text. Keywords are matched case-insensitively
// as Ident literals in the grammar; identifiers preserve case.
var cypherLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Elided from the token stream.
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`, Action: nil},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`, Action: nil},
		{Name: "LineComment", Pattern: `//[^\r\n]*`, Action: nil},

		// Multi-character operators before their single-character prefixes.
		{Name: "NotEqual", Pattern: `<>`},
		{Name: "LessEqual", Pattern: `<=`},
		{Name: "GreaterEqual", Pattern: `>=`},
		{Name: "AddAssign", Pattern: `\+=`},
		{Name: "Range", Pattern: `\.\.`},

		{Name: "Eq", Pattern: `=`},
		{Name: "Less", Pattern: `<`},
		{Name: "Greater", Pattern: `>`},
		{Name: "Plus", Pattern: `\+`},
		{Name: "Minus", Pattern: `-`},
		{Name: "Star", Pattern: `\*`},
		{Name: "Slash", Pattern: `/`},
		{Name: "Percent", Pattern: `%`},
		{Name: "Caret", Pattern: `\^`},
		{Name: "Question", Pattern: `\?`},
		{Name: "Dot", Pattern: `\.`},
		{Name: "Comma", Pattern: `,`},
		{Name: "Semicolon", Pattern: `;`},
		{Name: "Colon", Pattern: `:`},
		{Name: "Pipe", Pattern: `\|`},
		{Name: "Dollar", Pattern: `\$`},
		{Name: "LParen", Pattern: `\(`},
		{Name: "RParen", Pattern: `\)`},
		{Name: "LBrace", Pattern: `\{`},
		{Name: "RBrace", Pattern: `\}`},
		{Name: "LBracket", Pattern: `\[`},
		{Name: "RBracket", Pattern: `\]`},

		// Single- or double-quoted, with backslash escapes.
		{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`},

		// Backtick-quoted identifier.
		{Name: "EscapedIdent", Pattern: "`[^`]+`"},

		// Float before Int so the longest match wins.
		{Name: "Float", Pattern: `-?(?:\d+\.\d+|\.\d+)(?:[eE][+-]?\d+)?|-?\d+[eE][+-]?\d+`},
		{Name: "HexInt", Pattern: `-?0[xX][0-9a-fA-F]+`},
		{Name: "OctalInt", Pattern: `-?0[0-7]+`},
		{Name: "Int", Pattern: `-?\d+`},

		// After numbers so leading digits never lex as identifiers.
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	},
})
