package engine

import "fmt"

// TokenType identifies a lexical token in LaTeX math markup.
type TokenType int

const (
	tokEOF TokenType = iota
	tokNumber
	tokLetters // run of ASCII letters; split into symbols/functions by the parser
	tokCommand // backslash command, e.g. \frac, \sin, \left
	tokLBrace
	tokRBrace
	tokLParen
	tokRParen
	tokCaret
	tokUnderscore
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokEquals
	tokLBracket
	tokRBracket
	tokPipe
	tokIllegal
)

func (tt TokenType) String() string {
	switch tt {
	case tokEOF:
		return "EOF"
	case tokNumber:
		return "NUMBER"
	case tokLetters:
		return "LETTERS"
	case tokCommand:
		return "COMMAND"
	case tokLBrace:
		return "LBRACE"
	case tokRBrace:
		return "RBRACE"
	case tokLParen:
		return "LPAREN"
	case tokRParen:
		return "RPAREN"
	case tokCaret:
		return "CARET"
	case tokUnderscore:
		return "UNDERSCORE"
	case tokPlus:
		return "PLUS"
	case tokMinus:
		return "MINUS"
	case tokStar:
		return "STAR"
	case tokSlash:
		return "SLASH"
	case tokEquals:
		return "EQUALS"
	case tokLBracket:
		return "LBRACKET"
	case tokRBracket:
		return "RBRACKET"
	case tokPipe:
		return "PIPE"
	default:
		return "ILLEGAL"
	}
}

// Token is one lexeme with its byte position in the source.
type Token struct {
	Type   TokenType
	Lexeme string
	Pos    int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d", t.Type, t.Lexeme, t.Pos)
}
