// Package evalctx provides the variable context threaded between cell evaluations.
package evalctx

import "sort"

// Kind classifies a variable's values.
type Kind uint8

const (
	// Numeric indicates plain numeric values.
	Numeric Kind = iota
	// Analytical indicates values that may be unevaluated symbolic expressions,
	// e.g. the branches of a solve result.
	Analytical
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Analytical:
		return "analytical"
	default:
		return "unknown"
	}
}

// ParseKind parses a string into a Kind. Unknown strings map to Numeric.
func ParseKind(s string) Kind {
	if s == "analytical" {
		return Analytical
	}
	return Numeric
}

// Variable is one named context entry with an ordered list of candidate values.
// Values are canonical expression strings understood by the engine parser.
type Variable struct {
	Name   string
	Values []string
	Kind   Kind
}

// NewNumeric creates a numeric variable.
func NewNumeric(name string, values ...string) Variable {
	return Variable{Name: name, Values: values, Kind: Numeric}
}

// NewAnalytical creates an analytical variable.
func NewAnalytical(name string, values ...string) Variable {
	return Variable{Name: name, Values: values, Kind: Analytical}
}

// HasValues reports whether the variable carries at least one value.
func (v Variable) HasValues() bool { return len(v.Values) > 0 }

// First returns the first candidate value, or "" if none exist.
func (v Variable) First() string {
	if len(v.Values) == 0 {
		return ""
	}
	return v.Values[0]
}

// Context is an immutable, ordered set of variables. A Context is a value
// object: handlers never mutate the one they receive, they return a
// replacement built with With.
type Context struct {
	vars []Variable
}

// New creates a context holding the given variables. Later entries with a
// duplicate name supersede earlier ones.
func New(vars ...Variable) Context {
	ctx := Context{}
	return ctx.With(vars...)
}

// Len returns the number of variables.
func (c Context) Len() int { return len(c.vars) }

// Lookup returns the variable with the given name.
func (c Context) Lookup(name string) (Variable, bool) {
	for _, v := range c.vars {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// Has reports whether a variable with the given name exists.
func (c Context) Has(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}

// Variables returns a copy of the variables in insertion order.
func (c Context) Variables() []Variable {
	out := make([]Variable, len(c.vars))
	copy(out, c.vars)
	return out
}

// Names returns the variable names in insertion order.
func (c Context) Names() []string {
	out := make([]string, len(c.vars))
	for i, v := range c.vars {
		out[i] = v.Name
	}
	return out
}

// SortedNames returns the variable names in lexicographic order.
func (c Context) SortedNames() []string {
	out := c.Names()
	sort.Strings(out)
	return out
}

// With returns a new context with the given variables added. A variable whose
// name already exists fully supersedes the old entry, keeping its position.
func (c Context) With(vars ...Variable) Context {
	out := make([]Variable, len(c.vars))
	copy(out, c.vars)
	for _, v := range vars {
		replaced := false
		for i := range out {
			if out[i].Name == v.Name {
				out[i] = v
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, v)
		}
	}
	return Context{vars: out}
}

// Without returns a new context with the named variable removed.
func (c Context) Without(name string) Context {
	out := make([]Variable, 0, len(c.vars))
	for _, v := range c.vars {
		if v.Name != name {
			out = append(out, v)
		}
	}
	return Context{vars: out}
}
