package parser

import (
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/dhamidi/giftlint/gift"
)

// Every byte of input matches one of these rules, so lexing never fails on
// malformed questions; all syntax errors come from the parser.
var giftLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Escape", Pattern: `\\[\s\S]`},
	{Name: "Backslash", Pattern: `\\`},
	{Name: "Arrow", Pattern: `->`},
	{Name: "Newline", Pattern: `\n`},
	{Name: "Whitespace", Pattern: `[ \t\r\f]+`},
	{Name: "Punct", Pattern: `[~=#{}:\[\]%$]`},
	{Name: "Text", Pattern: `[^\\~=#{}:\[\]%$\s/-]+|[/-]`},
})

var (
	tokComment    lexer.TokenType
	tokEscape     lexer.TokenType
	tokArrow      lexer.TokenType
	tokNewline    lexer.TokenType
	tokWhitespace lexer.TokenType
	tokPunct      lexer.TokenType
	tokText       lexer.TokenType
)

func init() {
	symbols := giftLexer.Symbols()
	tokComment = symbols["Comment"]
	tokEscape = symbols["Escape"]
	tokArrow = symbols["Arrow"]
	tokNewline = symbols["Newline"]
	tokWhitespace = symbols["Whitespace"]
	tokPunct = symbols["Punct"]
	tokText = symbols["Text"]
}

// tokenize lexes text into a token slice that always ends with an EOF token.
func tokenize(file, text string) ([]lexer.Token, error) {
	lx, err := giftLexer.LexString(file, text)
	if err != nil {
		return nil, err
	}
	return lexer.ConsumeAll(lx)
}

func position(p lexer.Position) gift.Position {
	return gift.Position{Line: p.Line, Column: p.Column, Offset: p.Offset}
}
