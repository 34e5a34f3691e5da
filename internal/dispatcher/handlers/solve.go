package handlers

import (
	"errors"
	"fmt"

	"github.com/icanthink42/alpha-solve-analytical/internal/dispatcher/handler"
	"github.com/icanthink42/alpha-solve-analytical/internal/engine"
	"github.com/icanthink42/alpha-solve-analytical/internal/evalctx"
	"github.com/icanthink42/alpha-solve-analytical/internal/subst"
)

// SolveForDirective is the title of the solve handler's variable choice.
const SolveForDirective = "Solve for"

// Solve solves an equation for its free, unbound variable and records every
// branch of the solution in the context. It is the lowest-priority handler:
// anything more specific gets the cell first.
type Solve struct{}

// NewSolve creates the equation solving handler.
func NewSolve() *Solve { return &Solve{} }

// Name implements handler.Handler.
func (h *Solve) Name() string { return "solve" }

// Probe claims equations with at least one variable missing from the
// context, and offers the candidates as a UI choice.
func (h *Solve) Probe(req handler.Request) handler.ProbeResult {
	st, err := engine.Parse(req.Markup)
	if err != nil {
		return handler.NotApplicableBecause(h.Name(), "unparseable")
	}
	if !st.IsEquation() || st.Deriv != nil {
		return handler.NotApplicableBecause(h.Name(), "not a plain equation")
	}
	free := freeOfEquation(st)
	if len(free) == 0 {
		return handler.NotApplicableBecause(h.Name(), "no variables")
	}

	var unbound []string
	for _, n := range free {
		if !req.Context.Has(n) {
			unbound = append(unbound, n)
		}
	}
	if len(unbound) == 0 {
		return handler.NotApplicableBecause(h.Name(), "all variables defined in context")
	}

	pr := handler.Applicable("Simple Solver", PrioritySolve)
	if len(unbound) > 1 {
		pr = pr.WithDirective(handler.Directive{
			Title:   SolveForDirective,
			Options: unbound,
			Default: unbound[0],
		})
	}
	return pr
}

// Execute solves for the chosen variable across every combination of known
// values, dedupes the solution branches, and rebinds the variable in the
// context with all of them.
func (h *Solve) Execute(req handler.Request) handler.Result {
	st, err := engine.Parse(req.Markup)
	if err != nil {
		return handler.Errorf("solving equation: %v", err)
	}
	free := freeOfEquation(st)

	target, err := subst.SolveTarget(free, req.Context, req.Selected(SolveForDirective))
	if errors.Is(err, subst.ErrAllVariablesBound) {
		return handler.Success(req.Context, "All variables already defined in context")
	}
	if err != nil {
		return handler.Errorf("solving equation: %v", err)
	}

	bindings, err := subst.BindingsFor(req.Context, free, target)
	if err != nil {
		return handler.Errorf("solving equation: %v", err)
	}

	seen := make(map[string]bool)
	var outputs, values []string
	err = subst.ForEach(bindings, func(asn subst.Assignment) error {
		lhs := engine.Substitute(st.LHS, asn)
		rhs := engine.Substitute(st.RHS, asn)

		sols, err := engine.Solve(lhs, rhs, target)
		if errors.Is(err, engine.ErrNoSolution) {
			return nil
		}
		if err != nil {
			return err
		}
		for _, sol := range sols {
			key := engine.Canon(sol)
			if seen[key] {
				continue
			}
			seen[key] = true
			rendered := engine.Render(sol)
			outputs = append(outputs, fmt.Sprintf("%s=%s", target, rendered))
			values = append(values, rendered)
		}
		return nil
	})
	if err != nil {
		return handler.Errorf("solving equation: %v", err)
	}

	if len(values) == 0 {
		return handler.Success(req.Context, fmt.Sprintf("No solution found for %s", target))
	}

	updated := req.Context.With(evalctx.NewAnalytical(target, values...))
	return handler.Success(updated, outputs...)
}
