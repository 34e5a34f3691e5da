package handlers

import (
	"fmt"
	"sort"

	gosymbol "github.com/njchilds90/gosymbol"

	"github.com/icanthink42/alpha-solve-analytical/internal/dispatcher/handler"
	"github.com/icanthink42/alpha-solve-analytical/internal/engine"
	"github.com/icanthink42/alpha-solve-analytical/internal/evalctx"
	"github.com/icanthink42/alpha-solve-analytical/internal/subst"
)

// Equality verifies an equation whose variables are all known. It claims a
// cell only when every free variable is defined in the context, leaving
// partially-bound equations to the solver.
type Equality struct{}

// NewEquality creates the equality checking handler.
func NewEquality() *Equality { return &Equality{} }

// Name implements handler.Handler.
func (h *Equality) Name() string { return "equality" }

// Probe claims equations with every free variable defined in the context.
func (h *Equality) Probe(req handler.Request) handler.ProbeResult {
	st, err := engine.Parse(req.Markup)
	if err != nil {
		return handler.NotApplicableBecause(h.Name(), "unparseable")
	}
	if !st.IsEquation() || st.Deriv != nil {
		return handler.NotApplicableBecause(h.Name(), "not a plain equation")
	}
	for _, name := range freeOfEquation(st) {
		if !req.Context.Has(name) {
			return handler.NotApplicableBecause(h.Name(), "unbound variable "+name)
		}
	}
	return handler.Applicable("Check Equality", PriorityEquality)
}

// Execute substitutes every combination of known values and reports True
// only when the two sides agree for all of them. A direct variable-to-
// variable equation like x = y takes a shortcut instead: the two value sets
// are compared for set equality, ignoring order.
func (h *Equality) Execute(req handler.Request) handler.Result {
	st, err := engine.Parse(req.Markup)
	if err != nil {
		return handler.Errorf("checking equality: %v", err)
	}

	if l, r, ok := symbolPair(st); ok {
		equal, err := valueSetsEqual(req.Context, l, r)
		if err != nil {
			return handler.Errorf("checking equality: %v", err)
		}
		return handler.Success(req.Context, boolText(equal))
	}

	bindings, err := subst.BindingsFor(req.Context, freeOfEquation(st))
	if err != nil {
		return handler.Errorf("checking equality: %v", err)
	}

	if len(bindings) == 0 {
		return handler.Success(req.Context, boolText(engine.Equivalent(st.LHS, st.RHS)))
	}

	equal := true
	err = subst.ForEach(bindings, func(asn subst.Assignment) error {
		if !equal {
			return nil
		}
		lhs := engine.Substitute(st.LHS, asn)
		rhs := engine.Substitute(st.RHS, asn)
		if !engine.Equivalent(lhs, rhs) {
			equal = false
		}
		return nil
	})
	if err != nil {
		return handler.Errorf("checking equality: %v", err)
	}
	return handler.Success(req.Context, boolText(equal))
}

// symbolPair reports whether the equation is a bare variable on each side,
// with both variables distinct.
func symbolPair(st *engine.Statement) (string, string, bool) {
	l, lok := bareSymbol(st.LHS)
	r, rok := bareSymbol(st.RHS)
	if !lok || !rok || l == r {
		return "", "", false
	}
	return l, r, true
}

func bareSymbol(e gosymbol.Expr) (string, bool) {
	free := engine.FreeVariables(e)
	if len(free) == 1 && e.String() == free[0] {
		return free[0], true
	}
	return "", false
}

// valueSetsEqual compares the canonical value sets of two context
// variables, ignoring order and duplicates.
func valueSetsEqual(ctx evalctx.Context, a, b string) (bool, error) {
	as, err := canonSet(ctx, a)
	if err != nil {
		return false, err
	}
	bs, err := canonSet(ctx, b)
	if err != nil {
		return false, err
	}
	if len(as) != len(bs) {
		return false, nil
	}
	for k := range as {
		if !bs[k] {
			return false, nil
		}
	}
	return true, nil
}

func canonSet(ctx evalctx.Context, name string) (map[string]bool, error) {
	v, ok := ctx.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%s is not defined", name)
	}
	set := make(map[string]bool, len(v.Values))
	for _, raw := range v.Values {
		e, err := engine.ParseExpr(raw)
		if err != nil {
			return nil, fmt.Errorf("value %q of %s: %w", raw, name, err)
		}
		set[engine.Canon(e)] = true
	}
	return set, nil
}

func freeOfEquation(st *engine.Statement) []string {
	set := make(map[string]bool)
	for _, n := range engine.FreeVariables(st.LHS) {
		set[n] = true
	}
	for _, n := range engine.FreeVariables(st.RHS) {
		set[n] = true
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func boolText(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
