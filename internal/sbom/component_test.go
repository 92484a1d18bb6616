package sbom

import (
	"strings"
	"testing"
)

func TestNewComponent(t *testing.T) {
	c := NewComponent("serde", "1.0.0")
	if c.Name != "serde" || c.Version != "1.0.0" {
		t.Fatalf("unexpected component: %+v", c)
	}
	if !strings.HasPrefix(c.ID, "h:") {
		t.Errorf("expected hash identity, got %s", c.ID)
	}

	// Same inputs, same identity
	c2 := NewComponent("serde", "1.0.0")
	if c.ID != c2.ID {
		t.Errorf("identity not stable: %s != %s", c.ID, c2.ID)
	}

	c3 := NewComponent("serde", "1.0.1")
	if c.ID == c3.ID {
		t.Errorf("different versions collided: %s", c.ID)
	}
}

func TestSetPurl(t *testing.T) {
	t.Run("moves identity to the purl", func(t *testing.T) {
		c := NewComponent("lodash", "4.17.21")
		c.SetPurl("pkg:npm/lodash@4.17.21")
		if c.ID != "pkg:npm/lodash@4.17.21" {
			t.Errorf("expected purl identity, got %s", c.ID)
		}
		if c.Ecosystem != "npm" {
			t.Errorf("expected npm ecosystem, got %s", c.Ecosystem)
		}
	})

	t.Run("keeps an existing purl identity", func(t *testing.T) {
		c := NewComponent("lodash", "4.17.21")
		c.SetPurl("pkg:npm/lodash@4.17.21")
		c.SetPurl("pkg:npm/lodash@4.17.22")
		// The identity was already purl-derived; only Normalize moves it
		if c.ID != "pkg:npm/lodash@4.17.21" {
			t.Errorf("identity rewritten on second assignment: %s", c.ID)
		}
		if c.Purl != "pkg:npm/lodash@4.17.22" {
			t.Errorf("purl not updated: %s", c.Purl)
		}
	})
}

func TestEcosystemFromPurl(t *testing.T) {
	tests := []struct {
		purl string
		want string
	}{
		{"pkg:npm/lodash@4.17.21", "npm"},
		{"pkg:cargo/serde@1.0.0", "cargo"},
		{"pkg:pypi/requests@2.28.0", "pypi"},
		{"pkg:maven/org.apache/commons@1.0", "maven"},
		{"invalid-purl", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := EcosystemFromPurl(tt.purl); got != tt.want {
			t.Errorf("EcosystemFromPurl(%q) = %q, want %q", tt.purl, got, tt.want)
		}
	}
}
