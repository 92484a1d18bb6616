package output

import (
	"fmt"
	"io"

	"github.com/rezmoss/sbomdiff/internal/diff"
)

// TextRenderer produces the plain terminal format: a count summary
// followed by [+]/[-]/[~] sections. Empty sections are omitted.
type TextRenderer struct{}

func (TextRenderer) Render(d *diff.Diff, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "diff summary\n============\nadded:   %d\nremoved: %d\nchanged: %d\n",
		len(d.Added), len(d.Removed), len(d.Changed)); err != nil {
		return err
	}

	if len(d.Added) > 0 {
		if _, err := fmt.Fprint(w, "\n[+] added\n---------\n"); err != nil {
			return err
		}
		for _, c := range d.Added {
			if _, err := fmt.Fprintln(w, c.ID); err != nil {
				return err
			}
		}
	}

	if len(d.Removed) > 0 {
		if _, err := fmt.Fprint(w, "\n[-] removed\n-----------\n"); err != nil {
			return err
		}
		for _, c := range d.Removed {
			if _, err := fmt.Fprintln(w, c.ID); err != nil {
				return err
			}
		}
	}

	if len(d.Changed) > 0 {
		if _, err := fmt.Fprint(w, "\n[~] changed\n-----------\n"); err != nil {
			return err
		}
		for _, c := range d.Changed {
			if _, err := fmt.Fprintln(w, c.ID); err != nil {
				return err
			}
			for _, ch := range c.Changes {
				if _, err := fmt.Fprintf(w, "  %s: %s -> %s\n", ch.Field, ch.OldString(), ch.NewString()); err != nil {
					return err
				}
			}
		}
	}

	if len(d.EdgeChanges.Added) > 0 || len(d.EdgeChanges.Removed) > 0 {
		if _, err := fmt.Fprint(w, "\n[~] edges\n---------\n"); err != nil {
			return err
		}
		for _, e := range d.EdgeChanges.Added {
			if _, err := fmt.Fprintf(w, "+ %s -> %s\n", e.Parent, e.Child); err != nil {
				return err
			}
		}
		for _, e := range d.EdgeChanges.Removed {
			if _, err := fmt.Fprintf(w, "- %s -> %s\n", e.Parent, e.Child); err != nil {
				return err
			}
		}
	}

	return nil
}
