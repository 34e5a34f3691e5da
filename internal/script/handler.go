package script

import (
	"context"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/icanthink42/alpha-solve-analytical/internal/dispatcher/handler"
	"github.com/icanthink42/alpha-solve-analytical/internal/evalctx"
)

// DefaultPriority is used when a chunk's probe does not return one.
const DefaultPriority = 75

// DefaultCallTimeout bounds how long a single probe or execute call may
// run before the host gives up on it.
const DefaultCallTimeout = 5 * time.Second

// Option configures a scripted handler.
type Option func(*Handler)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) { h.timeout = d }
}

// Handler is an evaluation handler backed by a Lua chunk. It satisfies
// handler.Handler and can be registered alongside the built-in handlers.
type Handler struct {
	name    string
	exec    *executor
	cancel  context.CancelFunc
	timeout time.Duration
}

// NewHandler compiles source in a fresh sandboxed Lua state and verifies
// it defines probe and execute. The returned handler must be closed when
// no longer needed.
func NewHandler(name, source string, opts ...Option) (*Handler, error) {
	L := lua.NewState()
	sandboxState(L)

	if err := L.DoString(source); err != nil {
		L.Close()
		return nil, fmt.Errorf("script: loading %s: %w", name, err)
	}
	for _, fn := range []string{"probe", "execute"} {
		if _, ok := L.GetGlobal(fn).(*lua.LFunction); !ok {
			L.Close()
			return nil, fmt.Errorf("%w: %s missing %s", ErrMissingFunction, name, fn)
		}
	}

	h := &Handler{
		name:    name,
		exec:    newExecutor(L, 16),
		timeout: DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() {
		h.exec.Run(ctx)
		L.Close()
	}()
	return h, nil
}

// Close shuts down the handler's Lua state. The handler must not be used
// afterwards.
func (h *Handler) Close() {
	h.exec.Close()
	h.cancel()
}

// Name implements handler.Handler.
func (h *Handler) Name() string { return h.name }

// Probe implements handler.Handler by calling the chunk's probe function.
// Any Lua error folds into a not-applicable result.
func (h *Handler) Probe(req handler.Request) handler.ProbeResult {
	var (
		applicable bool
		priority   = DefaultPriority
		reason     string
	)
	err := h.call(func(L *lua.LState) error {
		if err := L.CallByParam(lua.P{
			Fn:      L.GetGlobal("probe"),
			NRet:    3,
			Protect: true,
		}, lua.LString(req.Markup), contextTable(L, req.Context)); err != nil {
			return err
		}
		applicable = lua.LVAsBool(L.Get(-3))
		if n, ok := L.Get(-2).(lua.LNumber); ok {
			priority = int(n)
		}
		if s, ok := L.Get(-1).(lua.LString); ok {
			reason = string(s)
		}
		L.Pop(3)
		return nil
	})
	if err != nil {
		return handler.NotApplicableBecause(h.name, err.Error())
	}
	if !applicable {
		return handler.NotApplicableBecause(h.name, reason)
	}
	return handler.Applicable(h.name, priority)
}

// Execute implements handler.Handler by calling the chunk's execute
// function and applying any context updates it returns.
func (h *Handler) Execute(req handler.Request) handler.Result {
	var (
		outputs []string
		updates []evalctx.Variable
	)
	err := h.call(func(L *lua.LState) error {
		if err := L.CallByParam(lua.P{
			Fn:      L.GetGlobal("execute"),
			NRet:    2,
			Protect: true,
		}, lua.LString(req.Markup), contextTable(L, req.Context)); err != nil {
			return err
		}
		var convErr error
		if t, ok := L.Get(-2).(*lua.LTable); ok {
			outputs = stringSlice(t)
		}
		if t, ok := L.Get(-1).(*lua.LTable); ok {
			updates, convErr = variableUpdates(t)
		}
		L.Pop(2)
		return convErr
	})
	if err != nil {
		return handler.Errorf("script %s: %v", h.name, err)
	}

	ctx := req.Context
	if len(updates) > 0 {
		ctx = ctx.With(updates...)
	}
	return handler.Success(ctx, outputs...)
}

func (h *Handler) call(fn func(L *lua.LState) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	return h.exec.Execute(ctx, fn)
}

// contextTable mirrors the evaluation context as a Lua table keyed by
// variable name, each entry carrying kind and values.
func contextTable(L *lua.LState, ctx evalctx.Context) *lua.LTable {
	t := L.NewTable()
	for _, v := range ctx.Variables() {
		vt := L.NewTable()
		vt.RawSetString("kind", lua.LString(v.Kind.String()))
		vals := L.NewTable()
		for _, s := range v.Values {
			vals.Append(lua.LString(s))
		}
		vt.RawSetString("values", vals)
		t.RawSetString(v.Name, vt)
	}
	return t
}

func stringSlice(t *lua.LTable) []string {
	var out []string
	t.ForEach(func(_, v lua.LValue) {
		out = append(out, v.String())
	})
	return out
}

// variableUpdates converts an updates table into context variables. Each
// entry is either a plain array of values (numeric by default) or a table
// with kind and values fields.
func variableUpdates(t *lua.LTable) ([]evalctx.Variable, error) {
	var out []evalctx.Variable
	var convErr error
	t.ForEach(func(k, v lua.LValue) {
		if convErr != nil {
			return
		}
		name, ok := k.(lua.LString)
		if !ok {
			convErr = fmt.Errorf("script: update key %v is not a variable name", k)
			return
		}
		entry, ok := v.(*lua.LTable)
		if !ok {
			convErr = fmt.Errorf("script: update for %s is not a table", name)
			return
		}

		kind := evalctx.Numeric
		values := entry
		if vv, ok := entry.RawGetString("values").(*lua.LTable); ok {
			values = vv
			if ks, ok := entry.RawGetString("kind").(lua.LString); ok {
				kind = evalctx.ParseKind(string(ks))
			}
		}
		out = append(out, evalctx.Variable{
			Name:   string(name),
			Kind:   kind,
			Values: stringSlice(values),
		})
	})
	return out, convErr
}
