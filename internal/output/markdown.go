package output

import (
	"fmt"
	"io"

	"github.com/rezmoss/sbomdiff/internal/diff"
)

// MarkdownRenderer produces GitHub-flavored markdown for PR comments,
// with collapsible <details> sections per change kind.
type MarkdownRenderer struct{}

func (MarkdownRenderer) Render(d *diff.Diff, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "### SBOM Diff Summary\n\n| Change | Count |\n| --- | --- |\n| Added | %d |\n| Removed | %d |\n| Changed | %d |\n\n",
		len(d.Added), len(d.Removed), len(d.Changed)); err != nil {
		return err
	}

	if len(d.Added) > 0 {
		if _, err := fmt.Fprintf(w, "<details><summary><b>Added (%d)</b></summary>\n\n", len(d.Added)); err != nil {
			return err
		}
		for _, c := range d.Added {
			if _, err := fmt.Fprintf(w, "- `%s`\n", c.ID); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(w, "</details>\n\n"); err != nil {
			return err
		}
	}

	if len(d.Removed) > 0 {
		if _, err := fmt.Fprintf(w, "<details><summary><b>Removed (%d)</b></summary>\n\n", len(d.Removed)); err != nil {
			return err
		}
		for _, c := range d.Removed {
			if _, err := fmt.Fprintf(w, "- `%s`\n", c.ID); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(w, "</details>\n\n"); err != nil {
			return err
		}
	}

	if len(d.Changed) > 0 {
		if _, err := fmt.Fprintf(w, "<details><summary><b>Changed (%d)</b></summary>\n\n", len(d.Changed)); err != nil {
			return err
		}
		for _, c := range d.Changed {
			if _, err := fmt.Fprintf(w, "#### `%s`\n", c.ID); err != nil {
				return err
			}
			for _, ch := range c.Changes {
				if _, err := fmt.Fprintf(w, "- **%s**: `%s` &rarr; `%s`\n", ch.Field, ch.OldString(), ch.NewString()); err != nil {
					return err
				}
			}
		}
		if _, err := fmt.Fprint(w, "</details>\n\n"); err != nil {
			return err
		}
	}

	if len(d.EdgeChanges.Added) > 0 || len(d.EdgeChanges.Removed) > 0 {
		total := len(d.EdgeChanges.Added) + len(d.EdgeChanges.Removed)
		if _, err := fmt.Fprintf(w, "<details><summary><b>Edge Changes (%d)</b></summary>\n\n", total); err != nil {
			return err
		}
		for _, e := range d.EdgeChanges.Added {
			if _, err := fmt.Fprintf(w, "- added: `%s` &rarr; `%s`\n", e.Parent, e.Child); err != nil {
				return err
			}
		}
		for _, e := range d.EdgeChanges.Removed {
			if _, err := fmt.Fprintf(w, "- removed: `%s` &rarr; `%s`\n", e.Parent, e.Child); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(w, "</details>\n"); err != nil {
			return err
		}
	}

	return nil
}
