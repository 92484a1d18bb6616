package sbom

import (
	"reflect"
	"testing"
)

func TestExpandLicenseExpression(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []string
	}{
		{"single id", "MIT", []string{"MIT"}},
		{"or expression", "MIT OR Apache-2.0", []string{"Apache-2.0", "MIT"}},
		{"and expression", "MIT AND Apache-2.0", []string{"Apache-2.0", "MIT"}},
		{"noassertion discarded", "NOASSERTION", nil},
		{"none discarded", "NONE", nil},
		{"lowercase noassertion discarded", "noassertion", nil},
		{"empty", "", nil},
		{"whitespace only", "   ", nil},
		{"invalid kept verbatim", "Custom Proprietary License", []string{"Custom Proprietary License"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandLicenseExpression(tt.expr)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandLicenseExpression(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}
