package engine

import (
	"fmt"

	gosymbol "github.com/njchilds90/gosymbol"
)

// Solve finds the values of varName satisfying lhs = rhs. The residual is
// collected as a polynomial in varName; degrees one through three are
// solved, anything else is an unsupported form. Solutions come back
// simplified, in the solver's natural order.
func Solve(lhs, rhs gosymbol.Expr, varName string) ([]gosymbol.Expr, error) {
	residual := gosymbol.AddOf(lhs, gosymbol.MulOf(gosymbol.N(-1), rhs))
	residual = gosymbol.Canonicalize(residual)

	// A variable that cancels out of the residual has no solvable
	// occurrences left: x+1 = x+2 has no solution for x.
	if _, ok := gosymbol.FreeSymbols(residual)[varName]; !ok {
		return nil, fmt.Errorf("%w: %s does not appear in the reduced equation", ErrNoSolution, varName)
	}

	deg := gosymbol.Degree(residual, varName)
	if deg < 1 || deg > 3 {
		return nil, fmt.Errorf("%w: degree %d in %s", ErrUnsupportedEquation, deg, varName)
	}

	coeffs := gosymbol.PolyCoeffs(residual, varName)
	get := func(k int) gosymbol.Expr {
		if c, ok := coeffs[k]; ok {
			return c
		}
		return gosymbol.N(0)
	}
	// Coefficient extraction misattributes non-polynomial occurrences, such
	// as sin(x) in an equation solved for x, to the constant term.
	for k := 0; k <= deg; k++ {
		if _, ok := gosymbol.FreeSymbols(get(k))[varName]; ok {
			return nil, fmt.Errorf("%w: %s appears non-polynomially", ErrUnsupportedEquation, varName)
		}
	}

	var res gosymbol.SolveResult
	switch deg {
	case 1:
		res = gosymbol.SolveLinear(get(1), get(0))
	case 2:
		res = gosymbol.SolveQuadraticExact(get(2), get(1), get(0))
	case 3:
		res = gosymbol.SolveCubic(get(3), get(2), get(1), get(0))
	}
	if len(res.Solutions) == 0 {
		if res.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrNoSolution, res.Error)
		}
		return nil, ErrNoSolution
	}

	out := make([]gosymbol.Expr, len(res.Solutions))
	for i, s := range res.Solutions {
		out[i] = gosymbol.DeepSimplify(s)
	}
	return out, nil
}
