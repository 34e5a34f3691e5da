// Package handler provides the handler interface and types for cell dispatch.
package handler

import "github.com/icanthink42/alpha-solve-analytical/internal/evalctx"

// Request carries everything a handler needs to evaluate one cell.
type Request struct {
	// CellID identifies the cell being evaluated.
	CellID string

	// Markup is the cell's math markup.
	Markup string

	// Context holds the variables accumulated by earlier cells.
	Context evalctx.Context

	// Selections maps directive titles to the option the user picked.
	// Empty until the UI answers a directive from a previous probe.
	Selections map[string]string
}

// Selected returns the user's choice for a directive title, or "".
func (r Request) Selected(title string) string {
	if r.Selections == nil {
		return ""
	}
	return r.Selections[title]
}

// Directive asks the UI to offer a choice before execution, such as which
// variable to solve for.
type Directive struct {
	// Title labels the choice.
	Title string

	// Options are the values the user may pick.
	Options []string

	// Default is the option used when the user picks nothing.
	Default string
}

// ProbeResult is a handler's side-effect-free claim on a cell.
type ProbeResult struct {
	// Applicable reports whether the handler wants the cell.
	Applicable bool

	// Priority orders applicable handlers; lower runs first.
	Priority int

	// Name is the handler's display name.
	Name string

	// Directives are UI choices the handler wants answered.
	Directives []Directive

	// Reason optionally explains a negative decision for tracing.
	Reason string
}

// Applicable creates a positive probe result.
func Applicable(name string, priority int) ProbeResult {
	return ProbeResult{Applicable: true, Priority: priority, Name: name}
}

// WithDirective returns a copy of the probe result with a directive added.
func (p ProbeResult) WithDirective(d Directive) ProbeResult {
	p.Directives = append(p.Directives, d)
	return p
}

// NotApplicable creates a negative probe result.
func NotApplicable(name string) ProbeResult {
	return ProbeResult{Name: name}
}

// NotApplicableBecause creates a negative probe result with a reason.
func NotApplicableBecause(name, reason string) ProbeResult {
	return ProbeResult{Name: name, Reason: reason}
}

// Handler evaluates cells of a particular shape.
//
// Probe must be side-effect free and must not panic: it inspects the cell
// and declines anything it cannot commit to executing. Execute may assume
// Probe said yes for the same request.
type Handler interface {
	// Name returns the handler's stable registration name.
	Name() string

	// Probe decides whether this handler applies to the cell.
	Probe(req Request) ProbeResult

	// Execute evaluates the cell.
	Execute(req Request) Result
}

// HandlerFunc adapts a pair of functions to the Handler interface.
type HandlerFunc struct {
	// HandlerName is the registration name.
	HandlerName string

	// ProbeFn decides applicability.
	ProbeFn func(req Request) ProbeResult

	// ExecuteFn evaluates the cell.
	ExecuteFn func(req Request) Result
}

// Name implements Handler.Name.
func (f *HandlerFunc) Name() string { return f.HandlerName }

// Probe implements Handler.Probe.
func (f *HandlerFunc) Probe(req Request) ProbeResult {
	if f.ProbeFn == nil {
		return NotApplicable(f.HandlerName)
	}
	return f.ProbeFn(req)
}

// Execute implements Handler.Execute.
func (f *HandlerFunc) Execute(req Request) Result {
	if f.ExecuteFn == nil {
		return Errorf("handler %s has no execute function", f.HandlerName)
	}
	return f.ExecuteFn(req)
}
