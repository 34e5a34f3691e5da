// Package dispatcher selects and runs the handler for a notebook cell.
//
// Every registered handler is probed for every cell. A probe inspects the
// markup and context without side effects and answers with an applicability
// claim and a priority. The dispatcher picks the applicable handler with the
// lowest priority number, breaking ties by registration order, and executes
// it. A cell no handler claims is a first-class outcome, not an error: it
// produces no outputs and passes the context through unchanged.
//
// Handler execution is wrapped in panic recovery by default. A panicking
// handler yields a single error result and the cell's input context
// survives intact.
package dispatcher
