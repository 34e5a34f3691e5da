package engine

import (
	"fmt"

	gosymbol "github.com/njchilds90/gosymbol"
)

// Antiderivative returns the indefinite integral of e with respect to
// varName, without a constant of integration.
func Antiderivative(e gosymbol.Expr, varName string) (gosymbol.Expr, error) {
	anti, ok := gosymbol.Integrate(e, varName)
	if !ok {
		return nil, fmt.Errorf("%w: integral of %s d%s", ErrNotIntegrable, e.String(), varName)
	}
	return anti, nil
}

// DefiniteIntegral evaluates the integral of e d(varName) from lower to
// upper exactly, by substituting the bounds into the antiderivative.
func DefiniteIntegral(e gosymbol.Expr, varName string, lower, upper gosymbol.Expr) (gosymbol.Expr, error) {
	anti, err := Antiderivative(e, varName)
	if err != nil {
		return nil, err
	}
	atUpper := gosymbol.Sub(anti, varName, upper)
	atLower := gosymbol.Sub(anti, varName, lower)
	diff := gosymbol.AddOf(atUpper, gosymbol.MulOf(gosymbol.N(-1), atLower))
	return gosymbol.DeepSimplify(diff), nil
}
