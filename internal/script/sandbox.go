package script

import (
	lua "github.com/yuin/gopher-lua"
)

// sandbox strips a Lua state down to pure computation. Handler chunks get
// string/table/math and nothing that reaches the filesystem or process.
func sandboxState(L *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}

	// Cut off module loading from disk and restrict require to the
	// built-ins that are already loaded.
	pkg := L.GetGlobal("package")
	if pkgTable, ok := pkg.(*lua.LTable); ok {
		L.SetField(pkgTable, "path", lua.LString(""))
		L.SetField(pkgTable, "cpath", lua.LString(""))
	}

	safe := map[string]bool{
		"string": true,
		"table":  true,
		"math":   true,
	}
	L.SetGlobal("require", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if !safe[name] {
			L.RaiseError("module %q is not available", name)
			return 0
		}
		L.Push(L.GetGlobal(name))
		return 1
	}))

	// os and io never belong in a handler.
	L.SetGlobal("os", lua.LNil)
	L.SetGlobal("io", lua.LNil)
}
