package engine

import (
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes LaTeX math markup.
//
// Structural commands the parser cares about (\frac, \left, function names)
// come out as tokCommand tokens; cosmetic spacing commands (\,, \;, \!, \ )
// are skipped entirely.
type Lexer struct {
	src string

	pos   int // byte index into src
	ch    rune
	width int
	done  bool
}

// NewLexer creates a lexer over the given markup.
func NewLexer(src string) *Lexer {
	l := &Lexer{src: src}
	l.readRune()
	return l
}

func (l *Lexer) readRune() {
	if l.pos >= len(l.src) {
		l.ch = 0
		l.width = 0
		l.done = true
		return
	}
	r, w := utf8.DecodeRuneInString(l.src[l.pos:])
	l.ch = r
	l.width = w
	l.pos += w
}

func (l *Lexer) peekRune() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return r
}

func (l *Lexer) makeToken(tt TokenType, lexeme string, pos int) Token {
	return Token{Type: tt, Lexeme: lexeme, Pos: pos}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	for !l.done && (l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r') {
		l.readRune()
	}
	if l.done {
		return l.makeToken(tokEOF, "", l.pos)
	}

	pos := l.pos - l.width

	switch {
	case l.ch == '\\':
		return l.lexCommand(pos)
	case unicode.IsDigit(l.ch):
		return l.lexNumber(pos)
	case unicode.IsLetter(l.ch):
		return l.lexLetters(pos)
	}

	ch := l.ch
	l.readRune()
	switch ch {
	case '{':
		return l.makeToken(tokLBrace, "{", pos)
	case '}':
		return l.makeToken(tokRBrace, "}", pos)
	case '(':
		return l.makeToken(tokLParen, "(", pos)
	case ')':
		return l.makeToken(tokRParen, ")", pos)
	case '^':
		return l.makeToken(tokCaret, "^", pos)
	case '_':
		return l.makeToken(tokUnderscore, "_", pos)
	case '+':
		return l.makeToken(tokPlus, "+", pos)
	case '-':
		return l.makeToken(tokMinus, "-", pos)
	case '*':
		return l.makeToken(tokStar, "*", pos)
	case '/':
		return l.makeToken(tokSlash, "/", pos)
	case '=':
		return l.makeToken(tokEquals, "=", pos)
	case '[':
		return l.makeToken(tokLBracket, "[", pos)
	case ']':
		return l.makeToken(tokRBracket, "]", pos)
	case '|':
		return l.makeToken(tokPipe, "|", pos)
	}
	return l.makeToken(tokIllegal, string(ch), pos)
}

func (l *Lexer) lexCommand(pos int) Token {
	// consume backslash
	l.readRune()
	if l.done {
		return l.makeToken(tokIllegal, "\\", pos)
	}

	// Single-character commands: \, \; \! \\ and escaped braces.
	if !unicode.IsLetter(l.ch) {
		ch := l.ch
		l.readRune()
		switch ch {
		case ',', ';', '!', ' ', '\\':
			return l.NextToken() // cosmetic spacing, skip
		case '{':
			return l.makeToken(tokLBrace, "\\{", pos)
		case '}':
			return l.makeToken(tokRBrace, "\\}", pos)
		}
		return l.makeToken(tokIllegal, "\\"+string(ch), pos)
	}

	start := l.pos - l.width
	for !l.done && unicode.IsLetter(l.ch) {
		l.readRune()
	}
	end := l.pos
	if !l.done {
		end = l.pos - l.width
	}
	name := l.src[start:end]
	return l.makeToken(tokCommand, name, pos)
}

func (l *Lexer) lexNumber(pos int) Token {
	start := pos
	for !l.done && unicode.IsDigit(l.ch) {
		l.readRune()
	}
	// Decimal part: a dot followed by a digit.
	if !l.done && l.ch == '.' && unicode.IsDigit(l.peekRune()) {
		l.readRune()
		for !l.done && unicode.IsDigit(l.ch) {
			l.readRune()
		}
	}
	end := l.pos
	if !l.done {
		end = l.pos - l.width
	}
	return l.makeToken(tokNumber, l.src[start:end], pos)
}

func (l *Lexer) lexLetters(pos int) Token {
	start := pos
	for !l.done && unicode.IsLetter(l.ch) {
		l.readRune()
	}
	end := l.pos
	if !l.done {
		end = l.pos - l.width
	}
	return l.makeToken(tokLetters, l.src[start:end], pos)
}
