// Package diff implements the two-pass SBOM comparison engine.
//
// Components are matched first by identity, then reconciled by
// (ecosystem, name) so a version bump shows up as one changed entry
// instead of an add/remove pair.
package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rezmoss/sbomdiff/internal/sbom"
)

// Field names a comparable component attribute. FieldDeps gates the
// dependency-edge comparison.
type Field string

const (
	FieldVersion  Field = "version"
	FieldLicense  Field = "license"
	FieldSupplier Field = "supplier"
	FieldPurl     Field = "purl"
	FieldHashes   Field = "hashes"
	FieldDeps     Field = "deps"
)

// ParseFields parses a comma-separated field list as accepted by --only.
func ParseFields(s string) ([]Field, error) {
	var fields []Field
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch f := Field(part); f {
		case FieldVersion, FieldLicense, FieldSupplier, FieldPurl, FieldHashes, FieldDeps:
			fields = append(fields, f)
		default:
			return nil, fmt.Errorf("unknown field %q (supported: version, license, supplier, purl, hashes, deps)", part)
		}
	}
	return fields, nil
}

// ComponentRef identifies a component in a diff listing.
type ComponentRef struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
	Purl    string `json:"purl,omitempty"`
}

// FieldChange records one attribute change on a matched component pair.
// Old/New carry scalar fields, OldList/NewList licenses, and
// OldHashes/NewHashes checksums; the Field tag says which pair is set.
type FieldChange struct {
	Field     Field             `json:"field"`
	Old       string            `json:"old,omitempty"`
	New       string            `json:"new,omitempty"`
	OldList   []string          `json:"old_list,omitempty"`
	NewList   []string          `json:"new_list,omitempty"`
	OldHashes map[string]string `json:"old_hashes,omitempty"`
	NewHashes map[string]string `json:"new_hashes,omitempty"`
}

// OldString renders the old side of the change for text output.
func (fc FieldChange) OldString() string {
	return fc.sideString(fc.Old, fc.OldList, fc.OldHashes)
}

// NewString renders the new side of the change for text output.
func (fc FieldChange) NewString() string {
	return fc.sideString(fc.New, fc.NewList, fc.NewHashes)
}

func (fc FieldChange) sideString(scalar string, list []string, hashes map[string]string) string {
	switch fc.Field {
	case FieldLicense:
		return "[" + strings.Join(list, ", ") + "]"
	case FieldHashes:
		algs := make([]string, 0, len(hashes))
		for alg := range hashes {
			algs = append(algs, alg)
		}
		sort.Strings(algs)
		parts := make([]string, 0, len(algs))
		for _, alg := range algs {
			parts = append(parts, alg+":"+hashes[alg])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		if scalar == "" {
			return "(none)"
		}
		return scalar
	}
}

// ChangedComponent is a matched pair with at least one field change.
// The id is the new-side identity.
type ChangedComponent struct {
	ID      string        `json:"id"`
	Changes []FieldChange `json:"changes"`
}

// Edge is a parent -> child dependency edge.
type Edge struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

// EdgeChanges lists dependency edges present on only one side.
type EdgeChanges struct {
	Added   []Edge `json:"added,omitempty"`
	Removed []Edge `json:"removed,omitempty"`
}

// Diff is the structured result of comparing two SBOMs. All lists are
// sorted, so equal inputs always produce structurally identical diffs.
type Diff struct {
	Added           []ComponentRef     `json:"added,omitempty"`
	Removed         []ComponentRef     `json:"removed,omitempty"`
	Changed         []ChangedComponent `json:"changed,omitempty"`
	EdgeChanges     EdgeChanges        `json:"edge_changes"`
	MetadataChanged bool               `json:"metadata_changed,omitempty"`
}

// Empty reports whether the diff carries no component or edge changes.
func (d *Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0 &&
		len(d.EdgeChanges.Added) == 0 && len(d.EdgeChanges.Removed) == 0
}

// reconcileKey groups unmatched components for the second pass.
type reconcileKey struct {
	ecosystem string
	name      string
}

// Compare diffs two normalized SBOMs. A nil filter compares every field;
// an empty filter reports only additions and removals.
func Compare(before, after *sbom.Sbom, only []Field) Diff {
	include := func(f Field) bool {
		if only == nil {
			return true
		}
		for _, o := range only {
			if o == f {
				return true
			}
		}
		return false
	}

	oldIDs := before.IDs()
	newIDs := after.IDs()

	// oldID -> newID for every matched pair
	pairs := make(map[string]string)
	matchedOld := make(map[string]bool)
	matchedNew := make(map[string]bool)

	// Pass 1: identity match
	for _, id := range newIDs {
		if _, ok := before.Components[id]; ok {
			pairs[id] = id
			matchedOld[id] = true
			matchedNew[id] = true
		}
	}

	// Pass 2: reconcile leftovers by (ecosystem, lowercased name).
	// Candidate lists stay sorted because oldIDs is sorted.
	candidates := make(map[reconcileKey][]string)
	for _, id := range oldIDs {
		if matchedOld[id] {
			continue
		}
		c := before.Components[id]
		k := reconcileKey{c.Ecosystem, strings.ToLower(c.Name)}
		candidates[k] = append(candidates[k], id)
	}

	for _, id := range newIDs {
		if matchedNew[id] {
			continue
		}
		c := after.Components[id]
		k := reconcileKey{c.Ecosystem, strings.ToLower(c.Name)}
		cands := candidates[k]
		if len(cands) == 0 {
			continue
		}

		// Prefer an exact version match, else the smallest candidate id.
		chosen := 0
		if len(cands) > 1 {
			for i, oldID := range cands {
				if before.Components[oldID].Version == c.Version {
					chosen = i
					break
				}
			}
		}
		oldID := cands[chosen]
		candidates[k] = append(cands[:chosen], cands[chosen+1:]...)

		pairs[oldID] = id
		matchedOld[oldID] = true
		matchedNew[id] = true
	}

	var d Diff
	for _, id := range newIDs {
		if !matchedNew[id] {
			d.Added = append(d.Added, refOf(after.Components[id]))
		}
	}
	for _, id := range oldIDs {
		if !matchedOld[id] {
			d.Removed = append(d.Removed, refOf(before.Components[id]))
		}
	}

	// Field changes, ordered by new-side id
	newToOld := make(map[string]string, len(pairs))
	for oldID, newID := range pairs {
		newToOld[newID] = oldID
	}
	for _, id := range newIDs {
		oldID, ok := newToOld[id]
		if !ok {
			continue
		}
		changes := compareComponents(before.Components[oldID], after.Components[id], include)
		if len(changes) > 0 {
			d.Changed = append(d.Changed, ChangedComponent{ID: id, Changes: changes})
		}
	}

	if include(FieldDeps) {
		d.EdgeChanges = compareEdges(before, after, pairs)
	}
	d.MetadataChanged = !equalStringMaps(before.Metadata, after.Metadata)

	return d
}

func refOf(c sbom.Component) ComponentRef {
	return ComponentRef{ID: c.ID, Name: c.Name, Version: c.Version, Purl: c.Purl}
}

func compareComponents(o, n sbom.Component, include func(Field) bool) []FieldChange {
	var changes []FieldChange

	if include(FieldVersion) && o.Version != n.Version {
		changes = append(changes, FieldChange{Field: FieldVersion, Old: o.Version, New: n.Version})
	}
	if include(FieldLicense) {
		oldLic := sortedUnique(o.Licenses)
		newLic := sortedUnique(n.Licenses)
		if !equalStringSlices(oldLic, newLic) {
			changes = append(changes, FieldChange{Field: FieldLicense, OldList: oldLic, NewList: newLic})
		}
	}
	if include(FieldSupplier) && o.Supplier != n.Supplier {
		changes = append(changes, FieldChange{Field: FieldSupplier, Old: o.Supplier, New: n.Supplier})
	}
	if include(FieldPurl) && o.Purl != n.Purl {
		changes = append(changes, FieldChange{Field: FieldPurl, Old: o.Purl, New: n.Purl})
	}
	if include(FieldHashes) && !equalStringMaps(o.Hashes, n.Hashes) {
		changes = append(changes, FieldChange{Field: FieldHashes, OldHashes: copyMap(o.Hashes), NewHashes: copyMap(n.Hashes)})
	}

	return changes
}

// compareEdges diffs the dependency graphs after translating old-side
// ids through the pairing. Edges touching a removed component keep their
// old id and therefore land in Removed.
func compareEdges(before, after *sbom.Sbom, pairs map[string]string) EdgeChanges {
	translate := func(id string) string {
		if mapped, ok := pairs[id]; ok {
			return mapped
		}
		return id
	}

	oldEdges := make(map[Edge]bool)
	for parent, children := range before.Dependencies {
		for _, child := range children {
			oldEdges[Edge{translate(parent), translate(child)}] = true
		}
	}
	newEdges := make(map[Edge]bool)
	for parent, children := range after.Dependencies {
		for _, child := range children {
			newEdges[Edge{parent, child}] = true
		}
	}

	var ec EdgeChanges
	for e := range newEdges {
		if !oldEdges[e] {
			ec.Added = append(ec.Added, e)
		}
	}
	for e := range oldEdges {
		if !newEdges[e] {
			ec.Removed = append(ec.Removed, e)
		}
	}
	sortEdges(ec.Added)
	sortEdges(ec.Removed)
	return ec
}

func sortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Parent != edges[j].Parent {
			return edges[i].Parent < edges[j].Parent
		}
		return edges[i].Child < edges[j].Child
	})
}

func sortedUnique(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	n := 0
	for i, v := range out {
		if i == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalStringMaps(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

func copyMap(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
