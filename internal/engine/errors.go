package engine

import "errors"

var (
	// ErrNoSolution means the equation is consistent but has no solution
	// for the requested variable.
	ErrNoSolution = errors.New("no solution")

	// ErrUnsupportedEquation means the equation is not in a form the
	// solver handles.
	ErrUnsupportedEquation = errors.New("unsupported equation form")

	// ErrNotIntegrable means no closed-form antiderivative was found.
	ErrNotIntegrable = errors.New("no closed-form antiderivative")

	// ErrUnsupportedODE means the differential equation is not in a form
	// the ODE solver handles.
	ErrUnsupportedODE = errors.New("unsupported ODE form")
)
