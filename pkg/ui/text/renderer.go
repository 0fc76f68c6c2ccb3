// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"

	"github.com/arthur-debert/wasmstash/pkg/types"
)

// Renderer prints the report lines exactly, one per artifact
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

// RenderEntry prints "<status>: <name>: <digest>[ (<n>kb)]", or
// "<name>: <digest>" for hash listings
func (r *Renderer) RenderEntry(entry types.Entry, withSize bool) error {
	line := entry.HashLine()
	if entry.Status != "" {
		line = entry.Line(withSize)
	}
	_, err := fmt.Fprintln(r.output, line)
	return err
}

// RenderResult renders the end of a run. Collection results print nothing
// more since every entry has already been written.
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *types.Result:
		return nil
	case *types.VerifyResult:
		for _, m := range v.Mismatches {
			if _, err := fmt.Fprintf(r.output, "Mismatch: %s: %s\n", m.Path, m.Digest); err != nil {
				return err
			}
		}
		for _, path := range v.Foreign {
			if _, err := fmt.Fprintf(r.output, "Foreign: %s\n", path); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(r.output, "Checked %d entries, %d mismatched\n", v.Checked, len(v.Mismatches))
		return err
	default:
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, err2 := fmt.Fprintf(r.output, "Error: %v\n", err)
	return err2
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
