// Package engine adapts the symbolic-computation library to the evaluator:
// LaTeX parsing into expressions, rendering back to LaTeX, substitution,
// simplification, and the equation and ODE solvers the handlers call.
package engine

import (
	"fmt"
	"sort"

	gosymbol "github.com/njchilds90/gosymbol"
)

// Parse parses one cell of math markup into a statement.
func Parse(markup string) (*Statement, error) {
	return NewParser(markup).ParseStatement()
}

// ParseExpr parses markup that must be a bare expression, not an equation.
func ParseExpr(markup string) (gosymbol.Expr, error) {
	st, err := Parse(markup)
	if err != nil {
		return nil, err
	}
	if st.RHS != nil || st.Deriv != nil {
		return nil, &ParseError{Pos: 0, Msg: "expected an expression, found an equation"}
	}
	return st.LHS, nil
}

// Render produces the LaTeX form of an expression. Stored variable values
// use this form so they re-parse to the same expression.
func Render(e gosymbol.Expr) string { return e.LaTeX() }

// Canon returns the canonical string form used for deduplication and
// value-set comparison.
func Canon(e gosymbol.Expr) string { return gosymbol.DeepSimplify(e).String() }

// Simplify applies the full simplification pipeline.
func Simplify(e gosymbol.Expr) gosymbol.Expr { return gosymbol.DeepSimplify(e) }

// Substitute replaces each named symbol with its expression value. All
// replacements see the original expression: a substituted value that
// mentions another substituted variable is inserted as-is, never rewritten
// by a later replacement, so the result does not depend on any ordering.
func Substitute(e gosymbol.Expr, values map[string]gosymbol.Expr) gosymbol.Expr {
	names := make([]string, 0, len(values))
	for n := range values {
		names = append(names, n)
	}
	sort.Strings(names)

	// Rename every target through a placeholder first, then fill the
	// placeholders in. The NUL byte keeps placeholders out of the symbol
	// namespace the parser can produce.
	out := e
	for i, n := range names {
		out = gosymbol.Sub(out, n, gosymbol.S(placeholder(i)))
	}
	for i, n := range names {
		out = gosymbol.Sub(out, placeholder(i), values[n])
	}
	return out.Simplify()
}

func placeholder(i int) string { return fmt.Sprintf("\x00subst%d", i) }

// FreeVariables returns the free symbol names of e in sorted order.
func FreeVariables(e gosymbol.Expr) []string {
	set := gosymbol.FreeSymbols(e)
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IsZero reports whether e reduces to the numeric constant zero after
// expansion.
func IsZero(e gosymbol.Expr) bool {
	r, ok := gosymbol.Canonicalize(e).Eval()
	return ok && r.IsZero()
}

// Equivalent reports whether a and b simplify to the same expression. Two
// expressions with a zero difference are equivalent even when their surface
// forms differ.
func Equivalent(a, b gosymbol.Expr) bool {
	if gosymbol.DeepSimplify(a).Equal(gosymbol.DeepSimplify(b)) {
		return true
	}
	diff := gosymbol.AddOf(a, gosymbol.MulOf(gosymbol.N(-1), b))
	return IsZero(diff)
}
