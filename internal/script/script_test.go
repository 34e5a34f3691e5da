package script_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/icanthink42/alpha-solve-analytical/internal/dispatcher/handler"
	"github.com/icanthink42/alpha-solve-analytical/internal/evalctx"
	"github.com/icanthink42/alpha-solve-analytical/internal/script"
)

const noteChunk = `
function probe(markup, ctx)
	if string.sub(markup, 1, 5) == "note:" then
		return true, 42
	end
	return false, 0, "not a note"
end

function execute(markup, ctx)
	local outputs = { "saw " .. markup }
	local updates = { seen = { kind = "analytical", values = { "1" } } }
	return outputs, updates
end
`

func mustHandler(t *testing.T, name, source string) *script.Handler {
	t.Helper()
	h, err := script.NewHandler(name, source)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	t.Cleanup(h.Close)
	return h
}

func TestProbeApplicable(t *testing.T) {
	h := mustHandler(t, "note", noteChunk)

	pr := h.Probe(handler.Request{Markup: "note: hi", Context: evalctx.New()})
	if !pr.Applicable || pr.Priority != 42 {
		t.Errorf("probe = %+v, want applicable at priority 42", pr)
	}

	pr = h.Probe(handler.Request{Markup: "x+y=5", Context: evalctx.New()})
	if pr.Applicable {
		t.Errorf("probe = %+v, want not applicable", pr)
	}
	if pr.Reason != "not a note" {
		t.Errorf("reason = %q, want the chunk's reason", pr.Reason)
	}
}

func TestExecuteOutputsAndUpdates(t *testing.T) {
	h := mustHandler(t, "note", noteChunk)

	res := h.Execute(handler.Request{Markup: "note: hi", Context: evalctx.New()})
	if res.Status != handler.StatusOK {
		t.Fatalf("status = %v (%v)", res.Status, res.Error)
	}
	if len(res.Outputs) != 1 || res.Outputs[0] != "saw note: hi" {
		t.Errorf("outputs = %v", res.Outputs)
	}
	v, ok := res.Context.Lookup("seen")
	if !ok || v.Kind != evalctx.Analytical || len(v.Values) != 1 || v.Values[0] != "1" {
		t.Errorf("context seen = %+v, want analytical [1]", v)
	}
}

func TestContextVisibleToChunk(t *testing.T) {
	h := mustHandler(t, "reader", `
function probe(markup, ctx)
	return ctx.x ~= nil
end

function execute(markup, ctx)
	return { ctx.x.values[1] }
end
`)
	ctx := evalctx.New(evalctx.NewNumeric("x", "7"))

	if pr := h.Probe(handler.Request{Markup: "", Context: ctx}); !pr.Applicable {
		t.Fatalf("probe = %+v, want applicable with x bound", pr)
	}
	if pr := h.Probe(handler.Request{Markup: "", Context: evalctx.New()}); pr.Applicable {
		t.Fatalf("probe = %+v, want not applicable without x", pr)
	}

	res := h.Execute(handler.Request{Markup: "", Context: ctx})
	if len(res.Outputs) != 1 || res.Outputs[0] != "7" {
		t.Errorf("outputs = %v, want [7]", res.Outputs)
	}
}

func TestDefaultPriority(t *testing.T) {
	h := mustHandler(t, "bare", `
function probe(markup, ctx)
	return true
end

function execute(markup, ctx)
	return {}
end
`)
	pr := h.Probe(handler.Request{Markup: "anything"})
	if !pr.Applicable || pr.Priority != script.DefaultPriority {
		t.Errorf("probe = %+v, want default priority", pr)
	}
}

func TestMissingFunctions(t *testing.T) {
	if _, err := script.NewHandler("broken", `x = 1`); !errors.Is(err, script.ErrMissingFunction) {
		t.Errorf("NewHandler error = %v, want ErrMissingFunction", err)
	}
	if _, err := script.NewHandler("syntax", `function probe(`); err == nil {
		t.Error("NewHandler accepted a chunk with a syntax error")
	}
}

func TestProbeErrorFoldsToNotApplicable(t *testing.T) {
	h := mustHandler(t, "angry", `
function probe(markup, ctx)
	error("no thanks")
end

function execute(markup, ctx)
	return {}
end
`)
	pr := h.Probe(handler.Request{Markup: "x"})
	if pr.Applicable {
		t.Errorf("probe = %+v, want not applicable on a Lua error", pr)
	}
	if !strings.Contains(pr.Reason, "no thanks") {
		t.Errorf("reason = %q, want the Lua error text", pr.Reason)
	}
}

func TestExecuteErrorResult(t *testing.T) {
	h := mustHandler(t, "angry", `
function probe(markup, ctx)
	return true
end

function execute(markup, ctx)
	error("boom")
end
`)
	ctx := evalctx.New(evalctx.NewNumeric("x", "1"))
	res := h.Execute(handler.Request{Markup: "x", Context: ctx})
	if res.Status != handler.StatusError {
		t.Fatalf("status = %v, want error", res.Status)
	}
	if res.Error == nil || !strings.Contains(res.Error.Error(), "boom") {
		t.Errorf("error = %v, want the Lua message", res.Error)
	}
}

func TestSandboxBlocksFilesystem(t *testing.T) {
	h := mustHandler(t, "sneaky", `
function probe(markup, ctx)
	return true
end

function execute(markup, ctx)
	if os ~= nil or io ~= nil or dofile ~= nil then
		return { "escaped" }
	end
	local ok = pcall(require, "io")
	if ok then
		return { "escaped" }
	end
	return { "contained" }
end
`)
	res := h.Execute(handler.Request{Markup: ""})
	if len(res.Outputs) != 1 || res.Outputs[0] != "contained" {
		t.Errorf("outputs = %v, want [contained]", res.Outputs)
	}
}

func TestClosedHandler(t *testing.T) {
	h, err := script.NewHandler("note", noteChunk)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	h.Close()

	res := h.Execute(handler.Request{Markup: "note: hi"})
	if res.Status != handler.StatusError {
		t.Errorf("status = %v, want error after Close", res.Status)
	}
}
