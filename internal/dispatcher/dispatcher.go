package dispatcher

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/icanthink42/alpha-solve-analytical/internal/dispatcher/handler"
	"github.com/icanthink42/alpha-solve-analytical/internal/trace"
)

// Dispatcher probes registered handlers and runs the best match for a cell.
type Dispatcher struct {
	mu sync.RWMutex

	registry *Registry
	config   Config
	metrics  *Metrics
	tracer   trace.Tracer
}

// New creates a new dispatcher with the given configuration.
func New(config Config) *Dispatcher {
	d := &Dispatcher{
		registry: NewRegistry(),
		config:   config,
		tracer:   trace.NopTracer{},
	}
	if config.EnableMetrics {
		d.metrics = NewMetrics()
	}
	return d
}

// NewWithDefaults creates a new dispatcher with default configuration.
func NewWithDefaults() *Dispatcher {
	return New(DefaultConfig())
}

// Registry returns the handler registry.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Metrics returns the metrics collector, or nil when disabled.
func (d *Dispatcher) Metrics() *Metrics {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.metrics
}

// SetTracer sets the evaluation tracer.
func (d *Dispatcher) SetTracer(t trace.Tracer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t == nil {
		t = trace.NopTracer{}
	}
	d.tracer = t
}

func (d *Dispatcher) getTracer() trace.Tracer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tracer
}

// Register adds a handler to the registry.
func (d *Dispatcher) Register(h handler.Handler) {
	d.registry.Register(h)
}

// Candidate is one applicable handler found during probing, with its
// position in the registration order for stable tiebreaks.
type Candidate struct {
	Handler  handler.Handler
	Probe    handler.ProbeResult
	regIndex int
}

// Candidates probes every registered handler and returns the applicable
// ones, best first. Probing never mutates anything; a probe that panics
// folds to not-applicable.
func (d *Dispatcher) Candidates(req handler.Request) []Candidate {
	tracer := d.getTracer()
	var out []Candidate
	for i, h := range d.registry.Handlers() {
		pr := d.safeProbe(h, req)
		tracer.ProbeDecision(req.CellID, h.Name(), pr.Applicable, pr.Priority, pr.Reason)
		if d.metrics != nil {
			d.metrics.RecordProbe(h.Name(), pr.Applicable)
		}
		if !pr.Applicable {
			continue
		}
		out = append(out, Candidate{Handler: h, Probe: pr, regIndex: i})
	}
	sortCandidates(out)
	return out
}

// sortCandidates orders by ascending priority, then registration order.
// Insertion sort keeps equal-priority candidates stable.
func sortCandidates(cs []Candidate) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0; j-- {
			a, b := cs[j-1], cs[j]
			if a.Probe.Priority < b.Probe.Priority ||
				(a.Probe.Priority == b.Probe.Priority && a.regIndex < b.regIndex) {
				break
			}
			cs[j-1], cs[j] = b, a
		}
	}
}

// safeProbe runs a probe with panic folding.
func (d *Dispatcher) safeProbe(h handler.Handler, req handler.Request) (pr handler.ProbeResult) {
	defer func() {
		if r := recover(); r != nil {
			pr = handler.NotApplicableBecause(h.Name(), "probe panicked")
		}
	}()
	return h.Probe(req)
}

// Dispatch evaluates one cell: probe all handlers, pick the best candidate,
// execute it. An unclaimed cell is not an error; it yields a no-handler
// result carrying the input context unchanged.
func (d *Dispatcher) Dispatch(req handler.Request) handler.Result {
	start := time.Now()

	candidates := d.Candidates(req)
	if len(candidates) == 0 {
		res := handler.NoHandler(req.Context)
		if d.metrics != nil {
			d.metrics.RecordDispatch("", time.Since(start), res.Status)
		}
		return res
	}

	best := candidates[0]
	d.getTracer().MatchFound(req.CellID, best.Handler.Name(), best.Probe.Priority)

	var result handler.Result
	if d.config.RecoverFromPanic {
		result = d.executeWithRecovery(best.Handler, req)
	} else {
		result = best.Handler.Execute(req)
	}

	// A failed evaluation never loses the caller's context.
	if result.Status != handler.StatusOK {
		result.Context = req.Context
	}

	if d.metrics != nil {
		d.metrics.RecordDispatch(best.Handler.Name(), time.Since(start), result.Status)
	}
	return result
}

// executeWithRecovery executes a handler with panic recovery. A panicking
// handler becomes a single error output with the input context intact.
func (d *Dispatcher) executeWithRecovery(h handler.Handler, req handler.Request) (result handler.Result) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)
			d.getTracer().ResolutionFailed(req.CellID, h.Name(),
				fmt.Sprintf("panic: %v\n%s", r, stack[:n]))

			// The visible error stays a single line; the stack goes to
			// the tracer only.
			result = handler.Errorf("handler panic in %s: %v", h.Name(), r)
			result.Context = req.Context

			if d.metrics != nil {
				d.metrics.RecordPanic(h.Name())
			}
		}
	}()

	return h.Execute(req)
}
