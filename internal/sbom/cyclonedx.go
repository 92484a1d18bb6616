package sbom

import (
	"encoding/json"

	cdx "github.com/CycloneDX/cyclonedx-go"

	"github.com/rezmoss/sbomdiff/internal/identity"
)

// ReadCycloneDX parses a CycloneDX 1.4+ JSON document. Components keep
// their bom-ref in SourceIDs; the dependencies array is the sole edge
// source. The result is not normalized.
func ReadCycloneDX(data []byte) (*Sbom, error) {
	var bom cdx.BOM
	if err := json.Unmarshal(data, &bom); err != nil {
		return nil, &ParseError{Format: FormatCycloneDX, Err: err}
	}

	s := New()
	s.Metadata["bomformat"] = bom.BOMFormat
	s.Metadata["specversion"] = bom.SpecVersion.String()
	if bom.SerialNumber != "" {
		s.Metadata["serialnumber"] = bom.SerialNumber
	}
	if bom.Metadata != nil && bom.Metadata.Timestamp != "" {
		s.Metadata["timestamp"] = bom.Metadata.Timestamp
	}

	// bom-ref -> ComponentId, for resolving the dependencies array
	refToID := make(map[string]string)

	if bom.Components != nil {
		for _, c := range *bom.Components {
			comp := Component{
				Name:    c.Name,
				Version: c.Version,
				Hashes:  make(map[string]string),
			}
			if c.PackageURL != "" {
				comp.Purl = c.PackageURL
				comp.Ecosystem = EcosystemFromPurl(c.PackageURL)
			}
			if c.Supplier != nil {
				comp.Supplier = c.Supplier.Name
			}
			if c.Licenses != nil {
				for _, lc := range *c.Licenses {
					switch {
					case lc.Expression != "":
						comp.Licenses = append(comp.Licenses, ExpandLicenseExpression(lc.Expression)...)
					case lc.License != nil && lc.License.ID != "":
						comp.Licenses = append(comp.Licenses, ExpandLicenseExpression(lc.License.ID)...)
					case lc.License != nil && lc.License.Name != "":
						comp.Licenses = append(comp.Licenses, ExpandLicenseExpression(lc.License.Name)...)
					}
				}
			}
			if c.Hashes != nil {
				for _, h := range *c.Hashes {
					comp.Hashes[string(h.Algorithm)] = h.Value
				}
			}
			if c.BOMRef != "" {
				comp.SourceIDs = append(comp.SourceIDs, c.BOMRef)
			}

			comp.ID = identity.Compute(comp.Purl, comp.fallbackFields())
			if _, exists := s.Components[comp.ID]; !exists {
				s.Components[comp.ID] = comp
			}
			if c.BOMRef != "" {
				refToID[c.BOMRef] = comp.ID
			}
		}
	}

	if bom.Dependencies != nil {
		for _, dep := range *bom.Dependencies {
			parentID, ok := refToID[dep.Ref]
			if !ok || dep.Dependencies == nil {
				continue
			}
			var children []string
			for _, childRef := range *dep.Dependencies {
				if childID, ok := refToID[childRef]; ok {
					children = append(children, childID)
				}
			}
			if len(children) > 0 {
				s.Dependencies[parentID] = append(s.Dependencies[parentID], children...)
			}
		}
	}

	return s, nil
}
