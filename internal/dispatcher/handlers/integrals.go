package handlers

import (
	gosymbol "github.com/njchilds90/gosymbol"

	"github.com/icanthink42/alpha-solve-analytical/internal/dispatcher/handler"
	"github.com/icanthink42/alpha-solve-analytical/internal/engine"
	"github.com/icanthink42/alpha-solve-analytical/internal/evalctx"
	"github.com/icanthink42/alpha-solve-analytical/internal/scan"
	"github.com/icanthink42/alpha-solve-analytical/internal/trace"
)

// Integrals rewrites definite-integral constructs in a cell, replacing each
// with its exact symbolic value. It runs before every other handler so the
// parsers downstream never see \int.
type Integrals struct {
	tracer trace.Tracer
}

// NewIntegrals creates the integral rewriting handler.
func NewIntegrals(tracer trace.Tracer) *Integrals {
	if tracer == nil {
		tracer = trace.NopTracer{}
	}
	return &Integrals{tracer: tracer}
}

// Name implements handler.Handler.
func (h *Integrals) Name() string { return "integrals" }

// Probe claims any cell containing a complete integral construct.
func (h *Integrals) Probe(req handler.Request) handler.ProbeResult {
	if !scan.Contains(req.Markup) {
		return handler.NotApplicableBecause(h.Name(), "no complete integral construct")
	}
	return handler.Applicable("Evaluate Integrals", PriorityIntegrals)
}

// Execute rewrites every resolvable integral and emits the rewritten markup
// as the cell's output. Constructs that fail to resolve are left in place.
func (h *Integrals) Execute(req handler.Request) handler.Result {
	rewritten, _ := scan.Rewrite(req.Markup, func(c scan.Construct) (string, error) {
		out, err := h.resolve(c, req.Context)
		if err != nil {
			h.tracer.ResolutionFailed(req.CellID, h.Name(), err.Error())
			return "", err
		}
		return out, nil
	})
	if rewritten != req.Markup {
		h.tracer.RewriteApplied(req.CellID, h.Name(), req.Markup, rewritten)
	}
	return handler.Success(req.Context, rewritten)
}

// resolve evaluates one construct. Context variables contribute their first
// value; the integration variable shadows any context entry of the same
// name inside the body.
func (h *Integrals) resolve(c scan.Construct, ctx evalctx.Context) (string, error) {
	lower, err := engine.ParseExpr(c.Lower)
	if err != nil {
		return "", err
	}
	upper, err := engine.ParseExpr(c.Upper)
	if err != nil {
		return "", err
	}
	body, err := engine.ParseExpr(c.Body)
	if err != nil {
		return "", err
	}

	boundVals := firstValues(ctx, "")
	lower = engine.Substitute(lower, boundVals)
	upper = engine.Substitute(upper, boundVals)
	body = engine.Substitute(body, firstValues(ctx, c.Var))

	result, err := engine.DefiniteIntegral(body, c.Var, lower, upper)
	if err != nil {
		return "", err
	}
	return engine.Render(result), nil
}

// firstValues collects the first value of every context variable except the
// skipped one. Values that fail to parse are ignored.
func firstValues(ctx evalctx.Context, skip string) map[string]gosymbol.Expr {
	out := make(map[string]gosymbol.Expr)
	for _, v := range ctx.Variables() {
		if v.Name == skip || !v.HasValues() {
			continue
		}
		e, err := engine.ParseExpr(v.First())
		if err != nil {
			continue
		}
		out[v.Name] = e
	}
	return out
}
