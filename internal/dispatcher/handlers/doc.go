// Package handlers provides the built-in cell handlers: integral rewriting,
// equality checking, simplification, ODE solving, and equation solving.
//
// Priorities are spaced so new handlers can slot between them. Lower numbers
// win: a cell containing a definite integral goes to the integral rewriter
// before any solver sees it.
package handlers

import (
	"github.com/icanthink42/alpha-solve-analytical/internal/dispatcher"
	"github.com/icanthink42/alpha-solve-analytical/internal/trace"
)

// Handler priorities, lowest runs first.
const (
	PriorityIntegrals = 3
	PriorityEquality  = 25
	PrioritySimplify  = 50
	PriorityODE       = 90
	PrioritySolve     = 100
)

// RegisterAll registers the built-in handlers on a dispatcher.
func RegisterAll(d *dispatcher.Dispatcher, tracer trace.Tracer) {
	if tracer == nil {
		tracer = trace.NopTracer{}
	}
	d.Register(NewIntegrals(tracer))
	d.Register(NewEquality())
	d.Register(NewSimplify())
	d.Register(NewODE())
	d.Register(NewSolve())
}
