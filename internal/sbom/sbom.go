package sbom

import (
	"sort"
	"strings"

	"github.com/rezmoss/sbomdiff/internal/identity"
)

// Sbom is the format-agnostic SBOM representation shared by both readers.
//
// Components and Dependencies are keyed by component id. Go maps carry no
// iteration order; deterministic order is provided by IDs, Parents, and the
// sorted slices Normalize leaves behind in the dependency sets.
type Sbom struct {
	Metadata     map[string]string    `json:"metadata,omitempty"`
	Components   map[string]Component `json:"components"`
	Dependencies map[string][]string  `json:"dependencies,omitempty"`
}

// New returns an empty, unnormalized SBOM.
func New() *Sbom {
	return &Sbom{
		Metadata:     make(map[string]string),
		Components:   make(map[string]Component),
		Dependencies: make(map[string][]string),
	}
}

// volatileMetadataKeys are stripped during normalization: they vary between
// tool runs without any change to the described software.
var volatileMetadataKeys = map[string]bool{
	"timestamp":         true,
	"created":           true,
	"creationinfo":      true,
	"tools":             true,
	"toolversion":       true,
	"serialnumber":      true,
	"documentnamespace": true,
}

// Normalize canonicalizes the SBOM for deterministic comparison:
// identities are recomputed, licenses sorted and deduplicated, hashes
// lowercased, volatile metadata stripped, and dangling or duplicate
// dependency edges dropped. Edges are remapped when an identity changes
// so graphs built before normalization survive. Idempotent.
func (s *Sbom) Normalize() {
	// 1. Identity reassignment
	remap := make(map[string]string)
	comps := make(map[string]Component, len(s.Components))
	for oldID, c := range s.Components {
		if c.Purl != "" {
			c.ID = c.Purl
			if c.Ecosystem == "" {
				c.Ecosystem = EcosystemFromPurl(c.Purl)
			}
		} else {
			c.ID = identity.Compute("", c.fallbackFields())
		}
		if c.ID != oldID {
			remap[oldID] = c.ID
		}

		// 2. Field canonicalization
		c.Licenses = sortedUnique(c.Licenses)
		if len(c.Hashes) > 0 {
			hashes := make(map[string]string, len(c.Hashes))
			for alg, val := range c.Hashes {
				val = strings.Join(strings.Fields(val), "")
				hashes[canonicalAlgorithm(alg)] = strings.ToLower(val)
			}
			c.Hashes = hashes
		}

		comps[c.ID] = c
	}
	s.Components = comps

	// 3. Metadata scrubbing
	for key := range s.Metadata {
		if volatileMetadataKeys[strings.ToLower(key)] {
			delete(s.Metadata, key)
		}
	}

	// 4 + 5. Rebuild the dependency graph: remap ids, drop edges with
	// unknown endpoints, deduplicate children, sort.
	deps := make(map[string][]string, len(s.Dependencies))
	for parent, children := range s.Dependencies {
		if mapped, ok := remap[parent]; ok {
			parent = mapped
		}
		if _, ok := s.Components[parent]; !ok {
			continue
		}
		kept := deps[parent]
		for _, child := range children {
			if mapped, ok := remap[child]; ok {
				child = mapped
			}
			if _, ok := s.Components[child]; ok {
				kept = append(kept, child)
			}
		}
		if len(kept) > 0 {
			deps[parent] = sortedUnique(kept)
		}
	}
	s.Dependencies = deps
}

// IDs returns all component ids in ascending order.
func (s *Sbom) IDs() []string {
	ids := make([]string, 0, len(s.Components))
	for id := range s.Components {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Parents returns the dependency-graph parent ids in ascending order.
func (s *Sbom) Parents() []string {
	parents := make([]string, 0, len(s.Dependencies))
	for id := range s.Dependencies {
		parents = append(parents, id)
	}
	sort.Strings(parents)
	return parents
}

// canonicalAlgorithm lowercases a hash algorithm name and drops the
// separators the formats disagree on ("SHA-256" vs "SHA256" vs "sha_256").
func canonicalAlgorithm(alg string) string {
	alg = strings.ToLower(alg)
	alg = strings.ReplaceAll(alg, "-", "")
	return strings.ReplaceAll(alg, "_", "")
}

// sortedUnique returns a sorted copy of in with duplicates removed.
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
