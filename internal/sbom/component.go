package sbom

import (
	"strings"

	"github.com/package-url/packageurl-go"

	"github.com/rezmoss/sbomdiff/internal/identity"
)

// Component is a single package, library, or application from any SBOM format.
type Component struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Version   string            `json:"version,omitempty"`
	Purl      string            `json:"purl,omitempty"`
	Ecosystem string            `json:"ecosystem,omitempty"`
	Licenses  []string          `json:"licenses,omitempty"`
	Hashes    map[string]string `json:"hashes,omitempty"`
	Supplier  string            `json:"supplier,omitempty"`
	SourceIDs []string          `json:"source_ids,omitempty"`
}

// NewComponent creates a component with a hash-derived identity from
// name and version. Derived fields start empty.
func NewComponent(name, version string) Component {
	c := Component{
		Name:    name,
		Version: version,
		Hashes:  make(map[string]string),
	}
	c.ID = identity.Compute("", c.fallbackFields())
	return c
}

// SetPurl assigns the package URL, rederives the ecosystem, and moves the
// identity to the purl unless it is already purl-derived.
func (c *Component) SetPurl(purl string) {
	c.Purl = purl
	c.Ecosystem = EcosystemFromPurl(purl)
	if !identity.FromPurl(c.ID) {
		c.ID = identity.Compute(purl, c.fallbackFields())
	}
}

// fallbackFields returns the identity fields for a component without a purl,
// in the canonical order: name, version, supplier. The name is always
// included; an empty version or supplier is skipped.
func (c *Component) fallbackFields() []identity.Field {
	fields := []identity.Field{{Key: "name", Value: c.Name}}
	if c.Version != "" {
		fields = append(fields, identity.Field{Key: "version", Value: c.Version})
	}
	if c.Supplier != "" {
		fields = append(fields, identity.Field{Key: "supplier", Value: c.Supplier})
	}
	return fields
}

// EcosystemFromPurl extracts the package type from a purl
// (e.g. "npm" from "pkg:npm/lodash@4.17.21"). Returns "" when the
// argument is not a purl.
func EcosystemFromPurl(purl string) string {
	if p, err := packageurl.FromString(purl); err == nil {
		return p.Type
	}
	// Tolerate purls the strict parser rejects
	if rest, ok := strings.CutPrefix(purl, "pkg:"); ok {
		if ty, _, ok := strings.Cut(rest, "/"); ok && ty != "" {
			return ty
		}
	}
	return ""
}
