// Package output renders a structured diff as text, markdown, or JSON.
package output

import (
	"fmt"
	"io"

	"github.com/rezmoss/sbomdiff/internal/diff"
)

// Renderer writes a diff to a byte sink. Output ordering follows the
// diff's ordering, which is already deterministic.
type Renderer interface {
	Render(d *diff.Diff, w io.Writer) error
}

// New returns the renderer for a format name: text, markdown (md), or json.
func New(format string) (Renderer, error) {
	switch format {
	case "text":
		return TextRenderer{}, nil
	case "markdown", "md":
		return MarkdownRenderer{}, nil
	case "json":
		return JSONRenderer{}, nil
	}
	return nil, fmt.Errorf("unknown output format %q (supported: text, markdown, json)", format)
}

// RenderSummary writes only the change counts, for --summary mode.
func RenderSummary(d *diff.Diff, w io.Writer) error {
	_, err := fmt.Fprintf(w, "added:   %d\nremoved: %d\nchanged: %d\n",
		len(d.Added), len(d.Removed), len(d.Changed))
	return err
}
