package engine

import (
	"fmt"

	gosymbol "github.com/njchilds90/gosymbol"
)

// SolveFirstOrder solves d f / d x = rhs for f(x), where rhs is linear in f:
// rhs = a(x) f + b(x). The general solution carries a C_1 constant of
// integration. Higher orders and nonlinear right-hand sides are unsupported.
func SolveFirstOrder(d *Derivative, rhs gosymbol.Expr) (gosymbol.Expr, error) {
	if d.Order != 1 {
		return nil, fmt.Errorf("%w: order %d", ErrUnsupportedODE, d.Order)
	}
	if d.Func == d.Var {
		return nil, fmt.Errorf("%w: d%s/d%s", ErrUnsupportedODE, d.Func, d.Var)
	}

	c1 := gosymbol.S("C_1")
	free := gosymbol.FreeSymbols(rhs)
	if _, ok := free[d.Func]; !ok {
		// Pure quadrature: f = ∫ rhs dx + C_1.
		anti, err := Antiderivative(rhs, d.Var)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedODE, err)
		}
		return gosymbol.AddOf(anti, c1).Simplify(), nil
	}

	if gosymbol.Degree(rhs, d.Func) != 1 {
		return nil, fmt.Errorf("%w: nonlinear in %s", ErrUnsupportedODE, d.Func)
	}
	coeffs := gosymbol.PolyCoeffs(gosymbol.Canonicalize(rhs), d.Func)
	a := coeffs[1]
	if a == nil {
		a = gosymbol.N(0)
	}
	b := coeffs[0]
	if b == nil {
		b = gosymbol.N(0)
	}
	for _, c := range []gosymbol.Expr{a, b} {
		if _, ok := gosymbol.FreeSymbols(c)[d.Func]; ok {
			return nil, fmt.Errorf("%w: nonlinear in %s", ErrUnsupportedODE, d.Func)
		}
	}

	// Homogeneous part: f = C_1 e^{∫a dx}.
	bigA, err := Antiderivative(a, d.Var)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedODE, err)
	}
	homog := gosymbol.MulOf(c1, gosymbol.ExpOf(bigA))
	if bz, ok := gosymbol.DeepSimplify(b).Eval(); ok && bz.IsZero() {
		return gosymbol.DeepSimplify(homog), nil
	}

	// Constant-coefficient inhomogeneous case: f = C_1 e^{a x} - b/a.
	an, aConst := gosymbol.DeepSimplify(a).Eval()
	bn, bConst := gosymbol.DeepSimplify(b).Eval()
	if aConst && bConst && !an.IsZero() {
		particular := gosymbol.MulOf(gosymbol.N(-1), bn, gosymbol.PowOf(an, gosymbol.N(-1)))
		return gosymbol.DeepSimplify(gosymbol.AddOf(homog, particular)), nil
	}

	// Variation of parameters: f = e^{A}(C_1 + ∫ b e^{-A} dx).
	inner := gosymbol.MulOf(b, gosymbol.ExpOf(gosymbol.MulOf(gosymbol.N(-1), bigA)))
	innerAnti, err := Antiderivative(gosymbol.DeepSimplify(inner), d.Var)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedODE, err)
	}
	sol := gosymbol.MulOf(gosymbol.ExpOf(bigA), gosymbol.AddOf(c1, innerAnti))
	return gosymbol.DeepSimplify(sol), nil
}
