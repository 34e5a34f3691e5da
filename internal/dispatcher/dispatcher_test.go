package dispatcher_test

import (
	"strings"
	"testing"

	"github.com/icanthink42/alpha-solve-analytical/internal/dispatcher"
	"github.com/icanthink42/alpha-solve-analytical/internal/dispatcher/handler"
	"github.com/icanthink42/alpha-solve-analytical/internal/evalctx"
	"github.com/icanthink42/alpha-solve-analytical/internal/trace"
)

func applicableHandler(name string, priority int, execute func(handler.Request) handler.Result) handler.Handler {
	return &handler.HandlerFunc{
		HandlerName: name,
		ProbeFn: func(handler.Request) handler.ProbeResult {
			return handler.Applicable(name, priority)
		},
		ExecuteFn: execute,
	}
}

func TestNewWithDefaults(t *testing.T) {
	d := dispatcher.NewWithDefaults()

	if d == nil {
		t.Fatal("expected non-nil dispatcher")
	}
	if d.Registry() == nil {
		t.Error("expected non-nil registry")
	}
	// Metrics should be nil by default
	if d.Metrics() != nil {
		t.Error("expected nil metrics by default")
	}
}

func TestNewWithMetrics(t *testing.T) {
	d := dispatcher.New(dispatcher.DefaultConfig().WithMetrics())
	if d.Metrics() == nil {
		t.Error("expected non-nil metrics when enabled")
	}
}

func TestDispatchNoHandlerIsFirstClass(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	ctx := evalctx.New(evalctx.NewNumeric("x", "1"))

	res := d.Dispatch(handler.Request{Markup: "anything", Context: ctx})

	if res.Status != handler.StatusNoHandler {
		t.Errorf("status = %v, want no-handler", res.Status)
	}
	if len(res.Outputs) != 0 {
		t.Errorf("outputs = %v, want none", res.Outputs)
	}
	if !res.Context.Has("x") {
		t.Error("context should pass through unchanged")
	}
}

func TestDispatchPicksLowestPriority(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	var ran []string
	record := func(name string) func(handler.Request) handler.Result {
		return func(req handler.Request) handler.Result {
			ran = append(ran, name)
			return handler.Success(req.Context, name)
		}
	}
	d.Register(applicableHandler("late", 100, record("late")))
	d.Register(applicableHandler("early", 3, record("early")))
	d.Register(applicableHandler("middle", 50, record("middle")))

	res := d.Dispatch(handler.Request{Markup: "x"})

	if len(ran) != 1 || ran[0] != "early" {
		t.Errorf("ran = %v, want [early]", ran)
	}
	if len(res.Outputs) != 1 || res.Outputs[0] != "early" {
		t.Errorf("outputs = %v", res.Outputs)
	}
}

func TestDispatchTieBreaksByRegistrationOrder(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	run := func(name string) func(handler.Request) handler.Result {
		return func(req handler.Request) handler.Result {
			return handler.Success(req.Context, name)
		}
	}
	d.Register(applicableHandler("first", 10, run("first")))
	d.Register(applicableHandler("second", 10, run("second")))

	res := d.Dispatch(handler.Request{Markup: "x"})
	if len(res.Outputs) != 1 || res.Outputs[0] != "first" {
		t.Errorf("outputs = %v, want [first]", res.Outputs)
	}
}

func TestCandidatesOrdered(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	d.Register(applicableHandler("b", 50, nil))
	d.Register(applicableHandler("a", 3, nil))
	d.Register(&handler.HandlerFunc{
		HandlerName: "never",
		ProbeFn: func(handler.Request) handler.ProbeResult {
			return handler.NotApplicable("never")
		},
	})

	cs := d.Candidates(handler.Request{Markup: "x"})
	if len(cs) != 2 {
		t.Fatalf("got %d candidates, want 2", len(cs))
	}
	if cs[0].Handler.Name() != "a" || cs[1].Handler.Name() != "b" {
		t.Errorf("order = [%s %s], want [a b]", cs[0].Handler.Name(), cs[1].Handler.Name())
	}
}

func TestProbePanicFoldsToNotApplicable(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	d.Register(&handler.HandlerFunc{
		HandlerName: "explosive",
		ProbeFn: func(handler.Request) handler.ProbeResult {
			panic("boom")
		},
	})
	d.Register(applicableHandler("calm", 10, func(req handler.Request) handler.Result {
		return handler.Success(req.Context, "ok")
	}))

	res := d.Dispatch(handler.Request{Markup: "x"})
	if res.Status != handler.StatusOK || len(res.Outputs) != 1 || res.Outputs[0] != "ok" {
		t.Errorf("result = %+v", res)
	}
}

func TestExecutePanicBecomesErrorWithInputContext(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	d.Register(applicableHandler("bad", 1, func(handler.Request) handler.Result {
		panic("kaboom")
	}))
	ctx := evalctx.New(evalctx.NewNumeric("keep", "1"))

	res := d.Dispatch(handler.Request{Markup: "x", Context: ctx})

	if res.Status != handler.StatusError {
		t.Fatalf("status = %v, want error", res.Status)
	}
	if res.Error == nil || !strings.Contains(res.Error.Error(), "kaboom") {
		t.Errorf("error = %v", res.Error)
	}
	if strings.Contains(res.Error.Error(), "\n") {
		t.Errorf("error = %q, want a single line without the stack", res.Error)
	}
	if !res.Context.Has("keep") {
		t.Error("input context should survive a panic")
	}
}

type recordingTracer struct {
	trace.NopTracer
	failures []string
}

func (r *recordingTracer) ResolutionFailed(_, _, reason string) {
	r.failures = append(r.failures, reason)
}

func TestExecutePanicStackGoesToTracer(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	rec := &recordingTracer{}
	d.SetTracer(rec)
	d.Register(applicableHandler("bad", 1, func(handler.Request) handler.Result {
		panic("kaboom")
	}))

	d.Dispatch(handler.Request{CellID: "c1", Markup: "x", Context: evalctx.New()})

	if len(rec.failures) != 1 || !strings.Contains(rec.failures[0], "kaboom") {
		t.Fatalf("tracer failures = %v, want the panic value", rec.failures)
	}
	if !strings.Contains(rec.failures[0], "goroutine") {
		t.Errorf("tracer reason = %q, want the stack trace", rec.failures[0])
	}
}

func TestErrorResultKeepsInputContext(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	d.Register(applicableHandler("failing", 1, func(handler.Request) handler.Result {
		// Deliberately returns a zero context with the error.
		return handler.Errorf("nope")
	}))
	ctx := evalctx.New(evalctx.NewNumeric("keep", "1"))

	res := d.Dispatch(handler.Request{Markup: "x", Context: ctx})
	if !res.Context.Has("keep") {
		t.Error("input context should survive an error result")
	}
}

func TestMetricsRecording(t *testing.T) {
	d := dispatcher.New(dispatcher.DefaultConfig().WithMetrics())
	d.Register(applicableHandler("h", 1, func(req handler.Request) handler.Result {
		return handler.Success(req.Context)
	}))

	d.Dispatch(handler.Request{Markup: "x"})
	d.Dispatch(handler.Request{Markup: "y"})

	m := d.Metrics()
	if m.TotalDispatches() != 2 {
		t.Errorf("dispatches = %d, want 2", m.TotalDispatches())
	}
	hm, ok := m.Handler("h")
	if !ok || hm.DispatchCount != 2 || hm.ProbeCount != 2 || hm.ApplicableCount != 2 {
		t.Errorf("handler metrics = %+v", hm)
	}
}

func TestMetricsPanicCount(t *testing.T) {
	d := dispatcher.New(dispatcher.DefaultConfig().WithMetrics())
	d.Register(applicableHandler("bad", 1, func(handler.Request) handler.Result {
		panic("x")
	}))

	d.Dispatch(handler.Request{Markup: "x"})

	if d.Metrics().TotalPanics() != 1 {
		t.Errorf("panics = %d, want 1", d.Metrics().TotalPanics())
	}
}
