package handlers

import (
	"fmt"

	"github.com/icanthink42/alpha-solve-analytical/internal/dispatcher/handler"
	"github.com/icanthink42/alpha-solve-analytical/internal/engine"
)

// ODE solves first-order ordinary differential equations written in Leibniz
// form. The general solution carries a C_1 constant; nothing is added to
// the context because the answer is a function, not a value.
type ODE struct{}

// NewODE creates the ODE solving handler.
func NewODE() *ODE { return &ODE{} }

// Name implements handler.Handler.
func (h *ODE) Name() string { return "ode" }

// Probe claims equations whose left side is a derivative.
func (h *ODE) Probe(req handler.Request) handler.ProbeResult {
	st, err := engine.Parse(req.Markup)
	if err != nil {
		return handler.NotApplicableBecause(h.Name(), "unparseable")
	}
	if st.Deriv == nil || st.RHS == nil {
		return handler.NotApplicableBecause(h.Name(), "no derivative")
	}
	return handler.Applicable("ODE Solver", PriorityODE)
}

// Execute solves the ODE. An unsolvable equation is reported as an output
// line rather than an error so the notebook shows why nothing came back.
func (h *ODE) Execute(req handler.Request) handler.Result {
	st, err := engine.Parse(req.Markup)
	if err != nil {
		return handler.Errorf("solving differential equation: %v", err)
	}

	sol, err := engine.SolveFirstOrder(st.Deriv, st.RHS)
	if err != nil {
		return handler.Success(req.Context, fmt.Sprintf("Could not solve ODE: %v", err))
	}
	out := fmt.Sprintf("%s=%s", st.Deriv.Func, engine.Render(sol))
	return handler.Success(req.Context, out)
}
