package sbom

import (
	"sort"
	"strings"

	"github.com/github/go-spdx/v2/spdxexp"
)

// ExpandLicenseExpression splits an SPDX license expression into its
// individual license identifiers ("MIT OR Apache-2.0" -> MIT, Apache-2.0).
// NOASSERTION and NONE are discarded. Strings that do not parse as SPDX
// expressions are kept verbatim.
func ExpandLicenseExpression(expr string) []string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}
	switch strings.ToUpper(expr) {
	case "NOASSERTION", "NONE":
		return nil
	}

	ids, err := spdxexp.ExtractLicenses(expr)
	if err != nil || len(ids) == 0 {
		return []string{expr}
	}
	sort.Strings(ids)
	return ids
}
