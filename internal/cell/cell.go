// Package cell defines the unit of input submitted for evaluation.
package cell

import (
	"strings"

	"github.com/google/uuid"
)

// Cell is one unit of LaTeX markup submitted for evaluation.
type Cell struct {
	// ID uniquely identifies the cell within a session.
	ID string

	// LaTeX is the raw markup content of the cell.
	LaTeX string
}

// New creates a cell with a fresh id.
func New(latex string) Cell {
	return Cell{ID: uuid.NewString(), LaTeX: latex}
}

// Content returns the trimmed markup.
func (c Cell) Content() string {
	return strings.TrimSpace(c.LaTeX)
}

// IsEmpty reports whether the cell has any markup content.
func (c Cell) IsEmpty() bool {
	return c.Content() == ""
}
