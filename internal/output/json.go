package output

import (
	"encoding/json"
	"io"

	"github.com/rezmoss/sbomdiff/internal/diff"
)

// JSONRenderer emits the machine-readable schema: summary counts, the
// added/removed/changed listings, and edge changes. Arrays are always
// present (never null) so consumers can index unconditionally.
type JSONRenderer struct{}

type jsonSummary struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Changed int `json:"changed"`
}

type jsonChanged struct {
	ID      string             `json:"id"`
	Changes []diff.FieldChange `json:"changes"`
}

type jsonEdgeChanges struct {
	Added   []diff.Edge `json:"added"`
	Removed []diff.Edge `json:"removed"`
}

type jsonDiff struct {
	Summary         jsonSummary         `json:"summary"`
	Added           []diff.ComponentRef `json:"added"`
	Removed         []diff.ComponentRef `json:"removed"`
	Changed         []jsonChanged       `json:"changed"`
	EdgeChanges     jsonEdgeChanges     `json:"edge_changes"`
	MetadataChanged bool                `json:"metadata_changed"`
}

func (JSONRenderer) Render(d *diff.Diff, w io.Writer) error {
	out := jsonDiff{
		Summary: jsonSummary{
			Added:   len(d.Added),
			Removed: len(d.Removed),
			Changed: len(d.Changed),
		},
		Added:   append([]diff.ComponentRef{}, d.Added...),
		Removed: append([]diff.ComponentRef{}, d.Removed...),
		Changed: make([]jsonChanged, 0, len(d.Changed)),
		EdgeChanges: jsonEdgeChanges{
			Added:   append([]diff.Edge{}, d.EdgeChanges.Added...),
			Removed: append([]diff.Edge{}, d.EdgeChanges.Removed...),
		},
		MetadataChanged: d.MetadataChanged,
	}
	for _, c := range d.Changed {
		out.Changed = append(out.Changed, jsonChanged{ID: c.ID, Changes: c.Changes})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
