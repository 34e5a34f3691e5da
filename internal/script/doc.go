// Package script runs evaluation handlers written in Lua.
//
// A scripted handler is a Lua chunk defining two global functions:
//
//	function probe(markup, ctx)
//	    return applicable, priority, reason
//	end
//
//	function execute(markup, ctx)
//	    return outputs, updates
//	end
//
// probe reports whether the handler wants the cell and at what priority.
// execute returns an array of output lines and an optional table of
// context updates, keyed by variable name:
//
//	updates = { y = { kind = "analytical", values = { "3" } } }
//
// The ctx argument mirrors the evaluation context in the same shape.
//
// Each handler owns one Lua state. gopher-lua states are not
// goroutine-safe, so every call is serialized through an executor
// goroutine that is the sole owner of the state. The state is sandboxed:
// no file loading, no module loading from disk.
package script
