package handlers

import (
	"strings"

	"github.com/icanthink42/alpha-solve-analytical/internal/dispatcher/handler"
	"github.com/icanthink42/alpha-solve-analytical/internal/engine"
	"github.com/icanthink42/alpha-solve-analytical/internal/subst"
)

// Simplify reduces a bare expression, producing one output per combination
// of known variable values with duplicates removed.
type Simplify struct{}

// NewSimplify creates the simplification handler.
func NewSimplify() *Simplify { return &Simplify{} }

// Name implements handler.Handler.
func (h *Simplify) Name() string { return "simplify" }

// Probe claims parseable cells that are not equations.
func (h *Simplify) Probe(req handler.Request) handler.ProbeResult {
	if strings.TrimSpace(req.Markup) == "" {
		return handler.NotApplicableBecause(h.Name(), "empty cell")
	}
	if strings.Contains(req.Markup, "=") {
		return handler.NotApplicableBecause(h.Name(), "contains an equals sign")
	}
	if _, err := engine.ParseExpr(req.Markup); err != nil {
		return handler.NotApplicableBecause(h.Name(), "unparseable")
	}
	return handler.Applicable("Simplify", PrioritySimplify)
}

// Execute simplifies the expression once per value combination. The context
// passes through unchanged.
func (h *Simplify) Execute(req handler.Request) handler.Result {
	expr, err := engine.ParseExpr(req.Markup)
	if err != nil {
		return handler.Errorf("simplifying expression: %v", err)
	}

	bindings, err := subst.BindingsFor(req.Context, engine.FreeVariables(expr))
	if err != nil {
		return handler.Errorf("simplifying expression: %v", err)
	}

	outputs, err := subst.Collect(bindings, func(asn subst.Assignment) ([]subst.TupleResult, error) {
		simplified := engine.Simplify(engine.Substitute(expr, asn))
		return []subst.TupleResult{{
			Output: engine.Render(simplified),
			Key:    engine.Canon(simplified),
		}}, nil
	})
	if err != nil {
		return handler.Errorf("simplifying expression: %v", err)
	}
	return handler.Success(req.Context, outputs...)
}
