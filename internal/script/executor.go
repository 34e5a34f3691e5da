package script

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// call is one queued Lua operation and the channel its result reports on.
type call struct {
	fn     func(L *lua.LState) error
	result chan error
}

// executor serializes all operations on one Lua state through a single
// goroutine. gopher-lua's LState is not goroutine-safe; the executor's
// Run loop is the only code that touches it.
type executor struct {
	L      *lua.LState
	queue  chan *call
	closed atomic.Bool
	done   chan struct{}

	closeOnce sync.Once
}

func newExecutor(L *lua.LState, queueSize int) *executor {
	if queueSize <= 0 {
		queueSize = 16
	}
	return &executor{
		L:     L,
		queue: make(chan *call, queueSize),
		done:  make(chan struct{}),
	}
}

// Run processes queued operations until the context is cancelled or the
// executor is closed. It must be called from the goroutine that owns the
// Lua state.
func (e *executor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			e.drain(ctx.Err())
			return
		case <-e.done:
			e.drain(ErrClosed)
			return
		case c, ok := <-e.queue:
			if !ok {
				return
			}
			err := e.run(c)
			select {
			case c.result <- err:
			default:
			}
			close(c.result)
		}
	}
}

// run executes one operation with panic recovery. A panicking chunk must
// not take down the host.
func (e *executor) run(c *call) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case error:
				err = v
			case string:
				err = errors.New(v)
			default:
				err = errors.New("script: lua panic")
			}
		}
	}()
	return c.fn(e.L)
}

func (e *executor) drain(err error) {
	for {
		select {
		case c, ok := <-e.queue:
			if !ok {
				return
			}
			select {
			case c.result <- err:
			default:
			}
			close(c.result)
		default:
			return
		}
	}
}

// Execute queues fn and blocks until it has run on the executor goroutine
// or ctx is cancelled.
func (e *executor) Execute(ctx context.Context, fn func(L *lua.LState) error) error {
	if e.closed.Load() {
		return ErrClosed
	}

	c := &call{fn: fn, result: make(chan error, 1)}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return ErrClosed
	case e.queue <- c:
	}

	select {
	case <-ctx.Done():
		// The call stays queued and will still run; we stop waiting.
		return ctx.Err()
	case err, ok := <-c.result:
		if !ok {
			return ErrClosed
		}
		return err
	}
}

// Close stops the executor. Queued operations complete with ErrClosed.
func (e *executor) Close() {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		close(e.done)
	})
}
