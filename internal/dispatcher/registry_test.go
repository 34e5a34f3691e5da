package dispatcher_test

import (
	"testing"

	"github.com/icanthink42/alpha-solve-analytical/internal/dispatcher"
	"github.com/icanthink42/alpha-solve-analytical/internal/dispatcher/handler"
)

func named(name string) handler.Handler {
	return &handler.HandlerFunc{HandlerName: name}
}

func TestRegistryOrder(t *testing.T) {
	r := dispatcher.NewRegistry()
	r.Register(named("c"))
	r.Register(named("a"))
	r.Register(named("b"))

	hs := r.Handlers()
	if len(hs) != 3 {
		t.Fatalf("len = %d, want 3", len(hs))
	}
	want := []string{"c", "a", "b"}
	for i, h := range hs {
		if h.Name() != want[i] {
			t.Errorf("handlers[%d] = %s, want %s", i, h.Name(), want[i])
		}
	}
}

func TestRegistryReplaceKeepsPosition(t *testing.T) {
	r := dispatcher.NewRegistry()
	r.Register(named("a"))
	r.Register(named("b"))

	replacement := &handler.HandlerFunc{
		HandlerName: "a",
		ProbeFn: func(handler.Request) handler.ProbeResult {
			return handler.Applicable("a", 1)
		},
	}
	r.Register(replacement)

	if r.Len() != 2 {
		t.Fatalf("len = %d, want 2", r.Len())
	}
	if r.Handlers()[0] != handler.Handler(replacement) {
		t.Error("replacement should keep first position")
	}
	if !r.Get("a").Probe(handler.Request{}).Applicable {
		t.Error("Get should return the replacement")
	}
}

func TestRegistryUnregister(t *testing.T) {
	r := dispatcher.NewRegistry()
	r.Register(named("a"))
	r.Register(named("b"))

	r.Unregister("a")
	if r.Len() != 1 || r.Get("a") != nil || r.Get("b") == nil {
		t.Errorf("unexpected registry state after unregister")
	}

	r.Unregister("missing") // no-op
	if r.Len() != 1 {
		t.Error("unregistering a missing name should not change the registry")
	}
}
