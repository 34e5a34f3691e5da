// Package session hosts a sequence of cell evaluations, threading the
// variable context from one cell to the next and round-tripping UI
// directive selections.
package session

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/icanthink42/alpha-solve-analytical/internal/cell"
	"github.com/icanthink42/alpha-solve-analytical/internal/dispatcher"
	"github.com/icanthink42/alpha-solve-analytical/internal/dispatcher/handler"
	"github.com/icanthink42/alpha-solve-analytical/internal/evalctx"
	"github.com/icanthink42/alpha-solve-analytical/internal/trace"
)

// Record is one evaluated cell with its visible outputs. Outputs of a
// failed evaluation carry the single rendered error line; the context
// never advances on failure.
type Record struct {
	Cell    cell.Cell
	Status  handler.ResultStatus
	Outputs []string
}

// Session owns the evaluation sequence. It is not safe for concurrent
// use; evaluate cells from one goroutine.
type Session struct {
	id      string
	disp    *dispatcher.Dispatcher
	ctx     evalctx.Context
	history []Record
	log     *trace.Logger
}

// Option configures a session.
type Option func(*Session)

// WithLogger attaches a logger for per-cell evaluation records.
func WithLogger(l *trace.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithContext seeds the session with an existing context instead of an
// empty one.
func WithContext(ctx evalctx.Context) Option {
	return func(s *Session) { s.ctx = ctx }
}

// New creates an empty session evaluating against disp.
func New(disp *dispatcher.Dispatcher, opts ...Option) *Session {
	s := &Session{
		id:   uuid.NewString(),
		disp: disp,
		ctx:  evalctx.New(),
		log:  trace.NullLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session's identity.
func (s *Session) ID() string { return s.id }

// Context returns the context as of the last successful evaluation.
func (s *Session) Context() evalctx.Context { return s.ctx }

// History returns the evaluated cells in order.
func (s *Session) History() []Record { return s.history }

// Directives probes markup and returns the UI directives of the handler
// that would win, so the host can collect selections before Eval. The
// markup is trimmed the same way Eval trims it, so both probe rounds see
// identical input.
func (s *Session) Directives(markup string) []handler.Directive {
	cs := s.disp.Candidates(handler.Request{Markup: strings.TrimSpace(markup), Context: s.ctx})
	if len(cs) == 0 {
		return nil
	}
	return cs[0].Probe.Directives
}

// Eval evaluates one cell of markup with no directive selections.
func (s *Session) Eval(markup string) Record {
	return s.EvalWithSelections(markup, nil)
}

// EvalWithSelections evaluates one cell, passing the host's directive
// selections (keyed by directive title) to the winning handler. On
// success the session context advances to the handler's replacement
// context; otherwise it stays where it was and the record carries a
// single error line.
func (s *Session) EvalWithSelections(markup string, selections map[string]string) Record {
	c := cell.New(markup)
	res := s.disp.Dispatch(handler.Request{
		CellID:     c.ID,
		Markup:     c.Content(),
		Context:    s.ctx,
		Selections: selections,
	})

	rec := Record{Cell: c, Status: res.Status, Outputs: res.Outputs}
	switch res.Status {
	case handler.StatusOK:
		s.ctx = res.Context
	case handler.StatusError:
		rec.Outputs = []string{fmt.Sprintf("Error: %v", res.Error)}
		s.log.Warn("cell %s failed: %v", c.ID, res.Error)
	}

	s.history = append(s.history, rec)
	return rec
}
