// Package json renders reports as JSON (serializes the report model as-is).
package json

import (
	"encoding/json"
	"io"

	"github.com/sonnes/cheftrends/core"
)

// Renderer renders a report to JSON.
type Renderer struct {
	// Indent controls pretty-printing. When true, output is indented.
	Indent bool
}

// New creates a JSON Renderer.
func New(indent bool) *Renderer {
	return &Renderer{Indent: indent}
}

// Render writes the report as a single JSON document followed by a newline.
func (r *Renderer) Render(w io.Writer, rep *core.Report) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if r.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(rep)
}
