// Package subst enumerates substitution combinations. When a cell mentions
// variables that hold several candidate values, an operation runs once per
// element of the Cartesian product of those value lists, and the collected
// outputs are deduplicated while keeping first-seen order.
package subst

import (
	"errors"
	"fmt"

	gosymbol "github.com/njchilds90/gosymbol"

	"github.com/icanthink42/alpha-solve-analytical/internal/engine"
	"github.com/icanthink42/alpha-solve-analytical/internal/evalctx"
)

// ErrAllVariablesBound means every free variable of the expression already
// holds a value, so there is nothing left to solve for.
var ErrAllVariablesBound = errors.New("all variables are bound")

// Binding is one substitutable variable with its parsed candidate values,
// in stored order.
type Binding struct {
	Name   string
	Values []gosymbol.Expr
}

// Assignment maps variable names to the value chosen for one combination.
type Assignment map[string]gosymbol.Expr

// BindingsFor selects the substitutable variables for an expression: context
// variables, in context order, that appear among the expression's free
// variables, carry at least one value, and are not excluded. Values parse
// with the engine; a value that fails to parse is an error, not a skip.
func BindingsFor(ctx evalctx.Context, free []string, exclude ...string) ([]Binding, error) {
	freeSet := make(map[string]bool, len(free))
	for _, n := range free {
		freeSet[n] = true
	}
	excluded := make(map[string]bool, len(exclude))
	for _, n := range exclude {
		excluded[n] = true
	}

	var bindings []Binding
	for _, v := range ctx.Variables() {
		if !freeSet[v.Name] || excluded[v.Name] || !v.HasValues() {
			continue
		}
		b := Binding{Name: v.Name, Values: make([]gosymbol.Expr, len(v.Values))}
		for i, raw := range v.Values {
			e, err := engine.ParseExpr(raw)
			if err != nil {
				return nil, fmt.Errorf("value %q of %s: %w", raw, v.Name, err)
			}
			b.Values[i] = e
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}

// Combinations returns the size of the Cartesian product, which is exactly
// how many times ForEach invokes its callback.
func Combinations(bindings []Binding) int {
	n := 1
	for _, b := range bindings {
		n *= len(b.Values)
	}
	return n
}

// ForEach enumerates every combination in deterministic order: the last
// binding varies fastest, like an odometer. With no bindings the callback
// runs exactly once with an empty assignment. A callback error stops the
// enumeration.
func ForEach(bindings []Binding, fn func(Assignment) error) error {
	idx := make([]int, len(bindings))
	for {
		asn := make(Assignment, len(bindings))
		for i, b := range bindings {
			asn[b.Name] = b.Values[idx[i]]
		}
		if err := fn(asn); err != nil {
			return err
		}

		i := len(bindings) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(bindings[i].Values) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return nil
		}
	}
}

// TupleResult is the product of one combination: the text to show and the
// canonical key used for deduplication.
type TupleResult struct {
	Output string
	Key    string
}

// Collect runs op for every combination and merges the per-combination
// results, dropping any whose key has been seen before. Output order follows
// enumeration order of the first occurrence of each key.
func Collect(bindings []Binding, op func(Assignment) ([]TupleResult, error)) ([]string, error) {
	seen := make(map[string]bool)
	var outputs []string
	err := ForEach(bindings, func(asn Assignment) error {
		results, err := op(asn)
		if err != nil {
			return err
		}
		for _, r := range results {
			if seen[r.Key] {
				continue
			}
			seen[r.Key] = true
			outputs = append(outputs, r.Output)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outputs, nil
}

// SolveTarget picks the variable to solve for: the lexicographically
// smallest free variable not present in the context. Membership alone
// counts; a context variable with no values yet is still not a solve
// target. A non-empty selected name wins outright when it is free in the
// expression.
func SolveTarget(free []string, ctx evalctx.Context, selected string) (string, error) {
	if selected != "" {
		for _, n := range free {
			if n == selected {
				return n, nil
			}
		}
		return "", fmt.Errorf("selected variable %s is not free in the expression", selected)
	}
	for _, n := range free { // free is sorted
		if ctx.Has(n) {
			continue
		}
		return n, nil
	}
	return "", ErrAllVariablesBound
}
