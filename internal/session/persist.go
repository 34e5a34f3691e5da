package session

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/icanthink42/alpha-solve-analytical/internal/cell"
	"github.com/icanthink42/alpha-solve-analytical/internal/dispatcher"
	"github.com/icanthink42/alpha-solve-analytical/internal/dispatcher/handler"
	"github.com/icanthink42/alpha-solve-analytical/internal/evalctx"
)

// Save serializes the session to JSON: its id, the current context, and
// the evaluated-cell history.
func (s *Session) Save() ([]byte, error) {
	out := []byte(`{}`)
	var err error

	if out, err = sjson.SetBytes(out, "id", s.id); err != nil {
		return nil, fmt.Errorf("session: saving id: %w", err)
	}

	for i, v := range s.ctx.Variables() {
		base := fmt.Sprintf("context.%d", i)
		if out, err = sjson.SetBytes(out, base+".name", v.Name); err != nil {
			return nil, fmt.Errorf("session: saving context: %w", err)
		}
		if out, err = sjson.SetBytes(out, base+".kind", v.Kind.String()); err != nil {
			return nil, fmt.Errorf("session: saving context: %w", err)
		}
		if out, err = sjson.SetBytes(out, base+".values", v.Values); err != nil {
			return nil, fmt.Errorf("session: saving context: %w", err)
		}
	}

	for i, rec := range s.history {
		base := fmt.Sprintf("history.%d", i)
		if out, err = sjson.SetBytes(out, base+".cell_id", rec.Cell.ID); err != nil {
			return nil, fmt.Errorf("session: saving history: %w", err)
		}
		if out, err = sjson.SetBytes(out, base+".markup", rec.Cell.LaTeX); err != nil {
			return nil, fmt.Errorf("session: saving history: %w", err)
		}
		if out, err = sjson.SetBytes(out, base+".status", rec.Status.String()); err != nil {
			return nil, fmt.Errorf("session: saving history: %w", err)
		}
		if out, err = sjson.SetBytes(out, base+".outputs", rec.Outputs); err != nil {
			return nil, fmt.Errorf("session: saving history: %w", err)
		}
	}

	return out, nil
}

// SaveFile writes the serialized session to path.
func (s *Session) SaveFile(path string) error {
	data, err := s.Save()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load restores a session from Save output. The dispatcher is not part
// of the serialized form and must be supplied again.
func Load(data []byte, disp *dispatcher.Dispatcher, opts ...Option) (*Session, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("session: invalid session JSON")
	}
	doc := gjson.ParseBytes(data)

	id := doc.Get("id").String()
	if id == "" {
		return nil, fmt.Errorf("session: missing id")
	}

	var vars []evalctx.Variable
	for _, entry := range doc.Get("context").Array() {
		v := evalctx.Variable{
			Name: entry.Get("name").String(),
			Kind: evalctx.ParseKind(entry.Get("kind").String()),
		}
		if v.Name == "" {
			return nil, fmt.Errorf("session: context entry missing name")
		}
		for _, val := range entry.Get("values").Array() {
			v.Values = append(v.Values, val.String())
		}
		vars = append(vars, v)
	}

	s := New(disp, opts...)
	s.id = id
	s.ctx = evalctx.New(vars...)

	for _, entry := range doc.Get("history").Array() {
		rec := Record{
			Cell: cell.Cell{
				ID:    entry.Get("cell_id").String(),
				LaTeX: entry.Get("markup").String(),
			},
			Status: parseStatus(entry.Get("status").String()),
		}
		for _, line := range entry.Get("outputs").Array() {
			rec.Outputs = append(rec.Outputs, line.String())
		}
		s.history = append(s.history, rec)
	}

	return s, nil
}

func parseStatus(s string) handler.ResultStatus {
	switch s {
	case "no-handler":
		return handler.StatusNoHandler
	case "error":
		return handler.StatusError
	default:
		return handler.StatusOK
	}
}

// LoadFile restores a session from a file written by SaveFile.
func LoadFile(path string, disp *dispatcher.Dispatcher, opts ...Option) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("session: reading %s: %w", path, err)
	}
	return Load(data, disp, opts...)
}
