package sbom

import (
	"bytes"

	spdxjson "github.com/spdx/tools-golang/json"
	"github.com/spdx/tools-golang/spdx"

	"github.com/rezmoss/sbomdiff/internal/identity"
)

// dependencyRelationships are the SPDX relationship types that become
// parent -> child edges; everything else is ignored.
var dependencyRelationships = map[string]bool{
	"DEPENDS_ON": true,
	"CONTAINS":   true,
	"DESCRIBES":  true,
}

// ReadSPDX parses an SPDX 2.3 JSON document. Packages keep their SPDXID
// in SourceIDs, as the spdx library returns it (without the "SPDXRef-"
// prefix); DEPENDS_ON, CONTAINS, and DESCRIBES relationships become
// edges. License expressions are expanded; NOASSERTION and NONE are
// discarded. The result is not normalized.
func ReadSPDX(data []byte) (*Sbom, error) {
	doc, err := spdxjson.Read(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Format: FormatSPDX, Err: err}
	}

	s := New()
	s.Metadata["spdxversion"] = doc.SPDXVersion
	s.Metadata["name"] = doc.DocumentName
	if doc.DocumentNamespace != "" {
		s.Metadata["documentnamespace"] = doc.DocumentNamespace
	}
	if doc.CreationInfo != nil && doc.CreationInfo.Created != "" {
		s.Metadata["created"] = doc.CreationInfo.Created
	}

	// SPDXID -> ComponentId, for resolving relationships
	refToID := make(map[string]string)

	for _, pkg := range doc.Packages {
		if pkg == nil {
			continue
		}
		comp := Component{
			Name:    pkg.PackageName,
			Version: pkg.PackageVersion,
			Hashes:  make(map[string]string),
		}
		for _, ref := range pkg.PackageExternalReferences {
			if ref == nil {
				continue
			}
			if ref.RefType == spdx.PackageManagerPURL || ref.RefType == "purl" {
				comp.Purl = ref.Locator
				comp.Ecosystem = EcosystemFromPurl(ref.Locator)
				break
			}
		}
		if pkg.PackageSupplier != nil && pkg.PackageSupplier.Supplier != "" &&
			pkg.PackageSupplier.Supplier != "NOASSERTION" {
			comp.Supplier = pkg.PackageSupplier.Supplier
		}
		comp.Licenses = ExpandLicenseExpression(pkg.PackageLicenseConcluded)
		for _, cs := range pkg.PackageChecksums {
			comp.Hashes[string(cs.Algorithm)] = cs.Value
		}

		srcID := string(pkg.PackageSPDXIdentifier)
		if srcID != "" {
			comp.SourceIDs = append(comp.SourceIDs, srcID)
		}

		comp.ID = identity.Compute(comp.Purl, comp.fallbackFields())
		if _, exists := s.Components[comp.ID]; !exists {
			s.Components[comp.ID] = comp
		}
		if srcID != "" {
			refToID[srcID] = comp.ID
		}
	}

	for _, rel := range doc.Relationships {
		if rel == nil || !dependencyRelationships[rel.Relationship] {
			continue
		}
		parentID, ok := refToID[string(rel.RefA.ElementRefID)]
		if !ok {
			continue
		}
		childID, ok := refToID[string(rel.RefB.ElementRefID)]
		if !ok {
			continue
		}
		s.Dependencies[parentID] = append(s.Dependencies[parentID], childID)
	}

	return s, nil
}
