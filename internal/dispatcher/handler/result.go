package handler

import (
	"fmt"

	"github.com/icanthink42/alpha-solve-analytical/internal/evalctx"
)

// ResultStatus indicates the outcome of evaluating a cell.
type ResultStatus uint8

const (
	// StatusOK indicates successful evaluation.
	StatusOK ResultStatus = iota
	// StatusNoHandler indicates no handler claimed the cell. The cell
	// produces no outputs and the context passes through unchanged.
	StatusNoHandler
	// StatusError indicates the evaluation failed. The context still
	// passes through unchanged.
	StatusError
)

// String returns a string representation of the status.
func (s ResultStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoHandler:
		return "no-handler"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Result represents the outcome of evaluating one cell.
type Result struct {
	// Status indicates the result status.
	Status ResultStatus

	// Error contains any error that occurred.
	Error error

	// Outputs are the rendered output lines for the cell, in order.
	Outputs []string

	// Context is the variable context after evaluation. Always set: a
	// failed or unclaimed evaluation carries the input context forward.
	Context evalctx.Context
}

// IsOK returns true if the result indicates success.
func (r Result) IsOK() bool { return r.Status == StatusOK }

// IsError returns true if the result indicates an error.
func (r Result) IsError() bool { return r.Status == StatusError }

// Success creates a successful result with outputs and the updated context.
func Success(ctx evalctx.Context, outputs ...string) Result {
	return Result{Status: StatusOK, Outputs: outputs, Context: ctx}
}

// NoHandler creates the result of an unclaimed cell.
func NoHandler(ctx evalctx.Context) Result {
	return Result{Status: StatusNoHandler, Context: ctx}
}

// Error creates an error result.
func Error(err error) Result {
	return Result{Status: StatusError, Error: err}
}

// Errorf creates an error result with a formatted message.
func Errorf(format string, args ...any) Result {
	return Result{Status: StatusError, Error: fmt.Errorf(format, args...)}
}

// WithContext returns a copy of the result with the context set.
func (r Result) WithContext(ctx evalctx.Context) Result {
	r.Context = ctx
	return r
}

// WithOutput returns a copy of the result with an output line appended.
func (r Result) WithOutput(line string) Result {
	r.Outputs = append(r.Outputs, line)
	return r
}
