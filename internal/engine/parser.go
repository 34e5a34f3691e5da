package engine

import (
	"fmt"
	"strconv"
	"strings"

	gosymbol "github.com/njchilds90/gosymbol"
)

// Statement is the parse result of one cell: a bare expression, an equation,
// or a derivative equation. When Deriv is non-nil the left side of the cell
// was a d^n f / d x^n form and LHS is nil.
type Statement struct {
	LHS   gosymbol.Expr
	RHS   gosymbol.Expr
	Deriv *Derivative
}

// IsEquation reports whether the cell contained an '='.
func (s *Statement) IsEquation() bool { return s.RHS != nil }

// Derivative describes a d^Order Func / d Var^Order left-hand side.
type Derivative struct {
	Func  string
	Var   string
	Order int
}

// ParseError reports a syntax problem with its byte offset in the markup.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
}

// Greek command names accepted as symbol names. The symbolic core renders
// symbols verbatim, so a greek letter survives a render/parse round trip as
// its spelled-out name.
var greekNames = map[string]bool{
	"alpha": true, "beta": true, "gamma": true, "delta": true,
	"epsilon": true, "varepsilon": true, "zeta": true, "eta": true,
	"theta": true, "vartheta": true, "iota": true, "kappa": true,
	"lambda": true, "mu": true, "nu": true, "xi": true, "pi": true,
	"rho": true, "sigma": true, "tau": true, "upsilon": true,
	"phi": true, "varphi": true, "chi": true, "psi": true, "omega": true,
	"Gamma": true, "Delta": true, "Theta": true, "Lambda": true,
	"Xi": true, "Pi": true, "Sigma": true, "Upsilon": true,
	"Phi": true, "Psi": true, "Omega": true,
}

var funcBuilders = map[string]func(gosymbol.Expr) gosymbol.Expr{
	"sin":    gosymbol.SinOf,
	"cos":    gosymbol.CosOf,
	"tan":    gosymbol.TanOf,
	"exp":    gosymbol.ExpOf,
	"ln":     gosymbol.LnOf,
	"log":    gosymbol.LnOf,
	"abs":    gosymbol.AbsOf,
	"sinh":   gosymbol.SinhOf,
	"cosh":   gosymbol.CoshOf,
	"tanh":   gosymbol.TanhOf,
	"asin":   gosymbol.AsinOf,
	"acos":   gosymbol.AcosOf,
	"atan":   gosymbol.AtanOf,
	"arcsin": gosymbol.AsinOf,
	"arccos": gosymbol.AcosOf,
	"arctan": gosymbol.AtanOf,
	"floor":  gosymbol.FloorOf,
	"ceil":   gosymbol.CeilOf,
}

// Parser is a recursive-descent parser over a pre-lexed token slice. Working
// from a slice rather than a token stream lets the derivative matcher and the
// subscript reader look at raw spans before committing to an interpretation.
type Parser struct {
	src  string
	toks []Token
	pos  int
}

// NewParser lexes the whole source up front.
func NewParser(src string) *Parser {
	lx := NewLexer(src)
	var toks []Token
	for {
		t := lx.NextToken()
		if t.Type == tokEOF {
			break
		}
		toks = append(toks, t)
	}
	return &Parser{src: src, toks: toks}
}

func (p *Parser) cur() Token {
	if p.pos >= len(p.toks) {
		end := len(p.src)
		return Token{Type: tokEOF, Pos: end}
	}
	return p.toks[p.pos]
}

func (p *Parser) advance() { p.pos++ }

func (p *Parser) errorf(tok Token, format string, args ...any) error {
	return &ParseError{Pos: tok.Pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(tt TokenType) (Token, error) {
	t := p.cur()
	if t.Type != tt {
		return t, p.errorf(t, "expected %s, found %s", tt, t.Type)
	}
	p.advance()
	return t, nil
}

// matchingBrace returns the index of the '}' that closes the '{' at open.
func (p *Parser) matchingBrace(open int) (int, error) {
	depth := 0
	for i := open; i < len(p.toks); i++ {
		switch p.toks[i].Type {
		case tokLBrace:
			depth++
		case tokRBrace:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, p.errorf(p.toks[open], "unbalanced brace")
}

// subParser parses the token span [start, end) as a standalone expression.
func (p *Parser) subParser(start, end int) *Parser {
	return &Parser{src: p.src, toks: p.toks[start:end]}
}

func (p *Parser) parseSpan(start, end int) (gosymbol.Expr, error) {
	sp := p.subParser(start, end)
	e, err := sp.ParseExpression()
	if err != nil {
		return nil, err
	}
	if t := sp.cur(); t.Type != tokEOF {
		return nil, p.errorf(t, "unexpected %s", t.Type)
	}
	return e, nil
}

// ParseStatement parses a full cell: expression, equation, or derivative
// equation. The derivative form is only recognized when the entire left side
// of an '=' is a single \frac with a d^n f over d x^n shape; anything else
// falls back to ordinary expression parsing.
func (p *Parser) ParseStatement() (*Statement, error) {
	if d, after, ok := p.matchLeadingDerivative(); ok && after < len(p.toks) && p.toks[after].Type == tokEquals {
		rhs, err := p.parseSpan(after+1, len(p.toks))
		if err != nil {
			return nil, err
		}
		return &Statement{Deriv: d, RHS: rhs}, nil
	}

	lhs, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	st := &Statement{LHS: lhs}
	if p.cur().Type == tokEquals {
		p.advance()
		rhs, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		st.RHS = rhs
	}
	if t := p.cur(); t.Type != tokEOF {
		return nil, p.errorf(t, "unexpected %s after expression", t.Type)
	}
	return st, nil
}

// matchLeadingDerivative checks for \frac{d^n f}{d x^n} at token 0 and
// returns the parsed form plus the index of the first token after the frac.
func (p *Parser) matchLeadingDerivative() (*Derivative, int, bool) {
	if len(p.toks) < 2 || p.toks[0].Type != tokCommand || p.toks[0].Lexeme != "frac" {
		return nil, 0, false
	}
	if p.toks[1].Type != tokLBrace {
		return nil, 0, false
	}
	numEnd, err := p.matchingBrace(1)
	if err != nil {
		return nil, 0, false
	}
	if numEnd+1 >= len(p.toks) || p.toks[numEnd+1].Type != tokLBrace {
		return nil, 0, false
	}
	denEnd, err := p.matchingBrace(numEnd + 1)
	if err != nil {
		return nil, 0, false
	}

	fn, numOrder, ok := matchDiffSpan(p.toks[2:numEnd], true)
	if !ok {
		return nil, 0, false
	}
	vr, denOrder, ok := matchDiffSpan(p.toks[numEnd+2:denEnd], false)
	if !ok || numOrder != denOrder {
		return nil, 0, false
	}
	return &Derivative{Func: fn, Var: vr, Order: numOrder}, denEnd + 1, true
}

// matchDiffSpan recognizes the numerator form d^k f (caretBeforeName) or the
// denominator form d x^k of a Leibniz derivative. The name must be a single
// letter or a greek command.
func matchDiffSpan(span []Token, caretBeforeName bool) (name string, order int, ok bool) {
	if len(span) == 0 {
		return "", 0, false
	}

	// Fused run like "dy" or "dx": order 1 with an optional trailing ^k on
	// the denominator side.
	if span[0].Type == tokLetters && len(span[0].Lexeme) == 2 && span[0].Lexeme[0] == 'd' {
		name = span[0].Lexeme[1:]
		rest := span[1:]
		if len(rest) == 0 {
			return name, 1, true
		}
		if !caretBeforeName {
			if k, ok := matchCaretOrder(rest); ok {
				return name, k, true
			}
		}
		return "", 0, false
	}

	if span[0].Type != tokLetters || span[0].Lexeme != "d" {
		return "", 0, false
	}
	rest := span[1:]

	if caretBeforeName {
		// d^k f
		if k, n := splitCaretOrder(rest); n > 0 {
			rest = rest[n:]
			name, ok = symbolSpanName(rest)
			return name, k, ok
		}
		name, ok = symbolSpanName(rest)
		return name, 1, ok
	}

	// d x or d x ^k with a greek or single-letter x.
	if len(rest) == 0 {
		return "", 0, false
	}
	var n int
	switch rest[0].Type {
	case tokCommand:
		if !greekNames[rest[0].Lexeme] {
			return "", 0, false
		}
		name = rest[0].Lexeme
		n = 1
	case tokLetters:
		if len(rest[0].Lexeme) != 1 {
			return "", 0, false
		}
		name = rest[0].Lexeme
		n = 1
	default:
		return "", 0, false
	}
	rest = rest[n:]
	if len(rest) == 0 {
		return name, 1, true
	}
	if k, ok := matchCaretOrder(rest); ok {
		return name, k, true
	}
	return "", 0, false
}

// matchCaretOrder matches a complete ^k or ^{k} span.
func matchCaretOrder(span []Token) (int, bool) {
	k, n := splitCaretOrder(span)
	if n == 0 || n != len(span) {
		return 0, false
	}
	return k, true
}

// splitCaretOrder reads a leading ^k or ^{k} and returns the order and the
// number of tokens consumed (0 when absent).
func splitCaretOrder(span []Token) (order, consumed int) {
	if len(span) < 2 || span[0].Type != tokCaret {
		return 0, 0
	}
	if span[1].Type == tokNumber {
		k, err := strconv.Atoi(span[1].Lexeme)
		if err != nil || k < 1 {
			return 0, 0
		}
		return k, 2
	}
	if len(span) >= 4 && span[1].Type == tokLBrace && span[2].Type == tokNumber && span[3].Type == tokRBrace {
		k, err := strconv.Atoi(span[2].Lexeme)
		if err != nil || k < 1 {
			return 0, 0
		}
		return k, 4
	}
	return 0, 0
}

func symbolSpanName(span []Token) (string, bool) {
	if len(span) != 1 {
		return "", false
	}
	switch span[0].Type {
	case tokLetters:
		if len(span[0].Lexeme) == 1 {
			return span[0].Lexeme, true
		}
	case tokCommand:
		if greekNames[span[0].Lexeme] {
			return span[0].Lexeme, true
		}
	}
	return "", false
}

// ParseExpression parses an additive expression.
func (p *Parser) ParseExpression() (gosymbol.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Type {
		case tokPlus:
			p.advance()
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = gosymbol.AddOf(left, right)
		case tokMinus:
			p.advance()
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = gosymbol.AddOf(left, gosymbol.MulOf(gosymbol.N(-1), right))
		default:
			return left, nil
		}
	}
}

func (p *Parser) parseTerm() (gosymbol.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.cur()
		switch {
		case t.Type == tokStar, t.Type == tokCommand && (t.Lexeme == "cdot" || t.Lexeme == "times"):
			p.advance()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = gosymbol.MulOf(left, right)
		case t.Type == tokSlash:
			p.advance()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = gosymbol.MulOf(left, gosymbol.PowOf(right, gosymbol.N(-1)))
		case p.startsAtom(t):
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = gosymbol.MulOf(left, right)
		default:
			return left, nil
		}
	}
}

// startsAtom reports whether tok can begin a factor, which drives implicit
// multiplication.
func (p *Parser) startsAtom(tok Token) bool {
	switch tok.Type {
	case tokNumber, tokLetters, tokLParen, tokLBrace:
		return true
	case tokCommand:
		switch tok.Lexeme {
		case "cdot", "times", "right":
			return false
		}
		return true
	}
	return false
}

func (p *Parser) parseUnary() (gosymbol.Expr, error) {
	switch p.cur().Type {
	case tokMinus:
		p.advance()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return gosymbol.MulOf(gosymbol.N(-1), e), nil
	case tokPlus:
		p.advance()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *Parser) parsePower() (gosymbol.Expr, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.cur().Type != tokCaret {
		return base, nil
	}
	p.advance()
	exp, err := p.parseExponent()
	if err != nil {
		return nil, err
	}
	return gosymbol.PowOf(base, exp), nil
}

// parseExponent reads a braced expression or a single (possibly negated)
// atom; unbraced exponents never span more than one factor.
func (p *Parser) parseExponent() (gosymbol.Expr, error) {
	t := p.cur()
	if t.Type == tokLBrace {
		end, err := p.matchingBrace(p.pos)
		if err != nil {
			return nil, err
		}
		e, err := p.parseSpan(p.pos+1, end)
		if err != nil {
			return nil, err
		}
		p.pos = end + 1
		return e, nil
	}
	neg := false
	if t.Type == tokMinus {
		neg = true
		p.advance()
	}
	e, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if neg {
		e = gosymbol.MulOf(gosymbol.N(-1), e)
	}
	return e, nil
}

func (p *Parser) parseAtom() (gosymbol.Expr, error) {
	t := p.cur()
	switch t.Type {
	case tokNumber:
		p.advance()
		return numberExpr(t, p)
	case tokLetters:
		return p.parseLetters()
	case tokCommand:
		return p.parseCommand()
	case tokLParen:
		p.advance()
		e, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return e, nil
	case tokLBrace:
		end, err := p.matchingBrace(p.pos)
		if err != nil {
			return nil, err
		}
		e, err := p.parseSpan(p.pos+1, end)
		if err != nil {
			return nil, err
		}
		p.pos = end + 1
		return e, nil
	}
	return nil, p.errorf(t, "unexpected %s", t.Type)
}

// numberExpr converts a numeric literal to an exact rational. Decimals
// become p/10^k so that render/parse round trips stay exact.
func numberExpr(t Token, p *Parser) (gosymbol.Expr, error) {
	lex := t.Lexeme
	dot := strings.IndexByte(lex, '.')
	if dot < 0 {
		v, err := strconv.ParseInt(lex, 10, 64)
		if err != nil {
			return nil, p.errorf(t, "number out of range: %s", lex)
		}
		return gosymbol.N(v), nil
	}
	frac := lex[dot+1:]
	digits := lex[:dot] + frac
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil, p.errorf(t, "number out of range: %s", lex)
	}
	q := int64(1)
	for range frac {
		if q > (1<<62)/10 {
			return nil, p.errorf(t, "number out of range: %s", lex)
		}
		q *= 10
	}
	return gosymbol.F(v, q), nil
}

// parseLetters handles a run of ASCII letters. The whole run is a function
// application when it names a known function and an argument follows;
// otherwise the run splits into single-letter symbols joined by implicit
// multiplication, with the leftmost letter consumed here and the remainder
// left in place for the next parseAtom call.
func (p *Parser) parseLetters() (gosymbol.Expr, error) {
	t := p.cur()
	if build, ok := funcBuilders[t.Lexeme]; ok && p.pos+1 < len(p.toks) {
		next := p.toks[p.pos+1]
		if next.Type == tokLParen || (next.Type == tokCommand && next.Lexeme == "left") {
			p.advance()
			arg, err := p.parseFunctionArg()
			if err != nil {
				return nil, err
			}
			return build(arg), nil
		}
	}

	name := t.Lexeme[:1]
	if len(t.Lexeme) > 1 {
		p.toks[p.pos].Lexeme = t.Lexeme[1:]
		p.toks[p.pos].Pos = t.Pos + 1
		return gosymbol.S(name), nil
	}
	p.advance()
	return p.parseSubscript(name)
}

// parseSubscript attaches an optional _k or _{...} suffix to a symbol name.
// Braced subscripts keep their braces in the name so the rendered form
// re-parses to the same symbol.
func (p *Parser) parseSubscript(name string) (gosymbol.Expr, error) {
	if p.cur().Type != tokUnderscore {
		return gosymbol.S(name), nil
	}
	p.advance()
	t := p.cur()
	switch t.Type {
	case tokLBrace:
		end, err := p.matchingBrace(p.pos)
		if err != nil {
			return nil, err
		}
		inner := p.src[t.Pos+1 : p.toks[end].Pos]
		p.pos = end + 1
		return gosymbol.S(name + "_{" + inner + "}"), nil
	case tokNumber, tokLetters:
		sub := t.Lexeme[:1]
		if len(t.Lexeme) > 1 {
			p.toks[p.pos].Lexeme = t.Lexeme[1:]
			p.toks[p.pos].Pos = t.Pos + 1
		} else {
			p.advance()
		}
		return gosymbol.S(name + "_" + sub), nil
	}
	return nil, p.errorf(t, "expected subscript after '_'")
}

func (p *Parser) parseCommand() (gosymbol.Expr, error) {
	t := p.cur()
	name := t.Lexeme
	switch {
	case name == "frac":
		p.advance()
		return p.parseFrac()
	case name == "sqrt":
		p.advance()
		return p.parseSqrt()
	case name == "left":
		return p.parseLeftGroup()
	case name == "operatorname":
		return p.parseOperatorName()
	case greekNames[name]:
		p.advance()
		return p.parseSubscript(name)
	case name == "int":
		return nil, p.errorf(t, "integral must be rewritten before evaluation")
	default:
		if build, ok := funcBuilders[name]; ok {
			p.advance()
			arg, err := p.parseFunctionArg()
			if err != nil {
				return nil, err
			}
			return build(arg), nil
		}
	}
	return nil, p.errorf(t, "unsupported command \\%s", name)
}

func (p *Parser) parseFrac() (gosymbol.Expr, error) {
	num, err := p.parseBracedGroup()
	if err != nil {
		return nil, err
	}
	den, err := p.parseBracedGroup()
	if err != nil {
		return nil, err
	}
	return gosymbol.MulOf(num, gosymbol.PowOf(den, gosymbol.N(-1))), nil
}

func (p *Parser) parseBracedGroup() (gosymbol.Expr, error) {
	if p.cur().Type != tokLBrace {
		return nil, p.errorf(p.cur(), "expected '{'")
	}
	end, err := p.matchingBrace(p.pos)
	if err != nil {
		return nil, err
	}
	e, err := p.parseSpan(p.pos+1, end)
	if err != nil {
		return nil, err
	}
	p.pos = end + 1
	return e, nil
}

// parseSqrt handles \sqrt{x} and \sqrt[n]{x} with an integer index.
func (p *Parser) parseSqrt() (gosymbol.Expr, error) {
	idx := int64(2)
	if p.cur().Type == tokLBracket {
		p.advance()
		t := p.cur()
		if t.Type != tokNumber || strings.ContainsRune(t.Lexeme, '.') {
			return nil, p.errorf(t, "root index must be an integer")
		}
		v, err := strconv.ParseInt(t.Lexeme, 10, 64)
		if err != nil || v == 0 {
			return nil, p.errorf(t, "bad root index %s", t.Lexeme)
		}
		idx = v
		p.advance()
		if _, err := p.expect(tokRBracket); err != nil {
			return nil, err
		}
	}
	arg, err := p.parseBracedGroup()
	if err != nil {
		return nil, err
	}
	return gosymbol.PowOf(arg, gosymbol.F(1, idx)), nil
}

// parseLeftGroup handles \left( ... \right) and \left| ... \right|.
func (p *Parser) parseLeftGroup() (gosymbol.Expr, error) {
	p.advance() // \left
	open := p.cur()
	if open.Type != tokLParen && open.Type != tokPipe && open.Type != tokLBracket {
		return nil, p.errorf(open, "unsupported \\left delimiter %s", open.Type)
	}
	p.advance()
	e, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if t := p.cur(); t.Type != tokCommand || t.Lexeme != "right" {
		return nil, p.errorf(t, "expected \\right")
	}
	p.advance()
	var closing TokenType
	switch open.Type {
	case tokLParen:
		closing = tokRParen
	case tokLBracket:
		closing = tokRBracket
	default:
		closing = tokPipe
	}
	if _, err := p.expect(closing); err != nil {
		return nil, err
	}
	if open.Type == tokPipe {
		return gosymbol.AbsOf(e), nil
	}
	return e, nil
}

// parseOperatorName handles \operatorname{f}(...) for the functions the
// engine knows.
func (p *Parser) parseOperatorName() (gosymbol.Expr, error) {
	t := p.cur()
	p.advance()
	if p.cur().Type != tokLBrace {
		return nil, p.errorf(p.cur(), "expected '{' after \\operatorname")
	}
	end, err := p.matchingBrace(p.pos)
	if err != nil {
		return nil, err
	}
	if end != p.pos+2 || p.toks[p.pos+1].Type != tokLetters {
		return nil, p.errorf(t, "bad \\operatorname")
	}
	fn := p.toks[p.pos+1].Lexeme
	build, ok := funcBuilders[fn]
	if !ok {
		return nil, p.errorf(t, "unknown function %q", fn)
	}
	p.pos = end + 1
	arg, err := p.parseFunctionArg()
	if err != nil {
		return nil, err
	}
	return build(arg), nil
}

// parseFunctionArg reads a function argument: a parenthesized group, a
// braced group, or a single tight factor as in \sin x.
func (p *Parser) parseFunctionArg() (gosymbol.Expr, error) {
	t := p.cur()
	switch {
	case t.Type == tokLParen:
		p.advance()
		e, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return e, nil
	case t.Type == tokLBrace:
		return p.parseBracedGroup()
	case t.Type == tokCommand && t.Lexeme == "left":
		return p.parseLeftGroup()
	}
	return p.parseUnary()
}
