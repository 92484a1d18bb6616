package sbom

import (
	"errors"
	"reflect"
	"testing"
)

const cdxFixture = `{
  "bomFormat": "CycloneDX",
  "specVersion": "1.4",
  "serialNumber": "urn:uuid:3e671687-395b-41f5-a30f-a58921a69b79",
  "version": 1,
  "metadata": {
    "timestamp": "2023-01-01T00:00:00Z"
  },
  "components": [
    {
      "type": "library",
      "bom-ref": "ref-serde",
      "name": "serde",
      "version": "1.0.190",
      "purl": "pkg:cargo/serde@1.0.190",
      "licenses": [{"license": {"id": "MIT"}}],
      "hashes": [{"alg": "SHA-256", "content": "ABC123"}],
      "supplier": {"name": "serde-rs"}
    },
    {
      "type": "library",
      "bom-ref": "ref-anon",
      "name": "anon-lib",
      "version": "0.1.0",
      "licenses": [{"expression": "MIT OR Apache-2.0"}]
    }
  ],
  "dependencies": [
    {"ref": "ref-serde", "dependsOn": ["ref-anon"]},
    {"ref": "ref-unknown", "dependsOn": ["ref-serde"]}
  ]
}`

const spdxFixture = `{
  "spdxVersion": "SPDX-2.3",
  "dataLicense": "CC0-1.0",
  "SPDXID": "SPDXRef-DOCUMENT",
  "name": "test-doc",
  "documentNamespace": "http://spdx.org/spdxdocs/test",
  "creationInfo": {
    "creators": ["Tool: manual"],
    "created": "2023-01-01T00:00:00Z"
  },
  "packages": [
    {
      "name": "serde",
      "SPDXID": "SPDXRef-serde",
      "versionInfo": "1.0.190",
      "downloadLocation": "NONE",
      "licenseConcluded": "MIT",
      "checksums": [{"algorithm": "SHA256", "checksumValue": "ABC123"}],
      "externalRefs": [
        {
          "referenceCategory": "PACKAGE-MANAGER",
          "referenceType": "purl",
          "referenceLocator": "pkg:cargo/serde@1.0.190"
        }
      ]
    },
    {
      "name": "helper",
      "SPDXID": "SPDXRef-helper",
      "versionInfo": "2.0.0",
      "downloadLocation": "NONE",
      "licenseConcluded": "NOASSERTION"
    }
  ],
  "relationships": [
    {
      "spdxElementId": "SPDXRef-serde",
      "relatedSpdxElement": "SPDXRef-helper",
      "relationshipType": "DEPENDS_ON"
    },
    {
      "spdxElementId": "SPDXRef-serde",
      "relatedSpdxElement": "SPDXRef-helper",
      "relationshipType": "BUILD_TOOL_OF"
    }
  ]
}`

func TestReadCycloneDX(t *testing.T) {
	s, err := ReadCycloneDX([]byte(cdxFixture))
	if err != nil {
		t.Fatalf("ReadCycloneDX: %v", err)
	}

	if len(s.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(s.Components))
	}

	serde, ok := s.Components["pkg:cargo/serde@1.0.190"]
	if !ok {
		t.Fatalf("serde not keyed by purl: %v", s.IDs())
	}
	if serde.Ecosystem != "cargo" {
		t.Errorf("ecosystem = %q, want cargo", serde.Ecosystem)
	}
	if serde.Supplier != "serde-rs" {
		t.Errorf("supplier = %q", serde.Supplier)
	}
	if !reflect.DeepEqual(serde.SourceIDs, []string{"ref-serde"}) {
		t.Errorf("source ids = %v", serde.SourceIDs)
	}
	if serde.Hashes["SHA-256"] != "ABC123" {
		t.Errorf("hashes = %v (adapter must not normalize)", serde.Hashes)
	}

	// The expression component gets both license ids
	var anon Component
	for _, c := range s.Components {
		if c.Name == "anon-lib" {
			anon = c
		}
	}
	if len(anon.Licenses) != 2 {
		t.Errorf("expression not expanded: %v", anon.Licenses)
	}

	// Edge resolved through bom-refs; the unknown ref is dropped
	if len(s.Dependencies) != 1 {
		t.Fatalf("dependencies = %v", s.Dependencies)
	}
	children := s.Dependencies["pkg:cargo/serde@1.0.190"]
	if len(children) != 1 || children[0] != anon.ID {
		t.Errorf("edge not resolved: %v", children)
	}

	if s.Metadata["timestamp"] != "2023-01-01T00:00:00Z" {
		t.Errorf("timestamp not captured: %v", s.Metadata)
	}
}

func TestReadSPDX(t *testing.T) {
	s, err := ReadSPDX([]byte(spdxFixture))
	if err != nil {
		t.Fatalf("ReadSPDX: %v", err)
	}

	if len(s.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(s.Components))
	}

	serde, ok := s.Components["pkg:cargo/serde@1.0.190"]
	if !ok {
		t.Fatalf("serde not keyed by purl: %v", s.IDs())
	}
	if !reflect.DeepEqual(serde.Licenses, []string{"MIT"}) {
		t.Errorf("licenses = %v", serde.Licenses)
	}
	if !reflect.DeepEqual(serde.SourceIDs, []string{"serde"}) {
		t.Errorf("source ids = %v", serde.SourceIDs)
	}

	var helper Component
	for _, c := range s.Components {
		if c.Name == "helper" {
			helper = c
		}
	}
	if len(helper.Licenses) != 0 {
		t.Errorf("NOASSERTION not discarded: %v", helper.Licenses)
	}

	// Only DEPENDS_ON becomes an edge; BUILD_TOOL_OF is ignored
	children := s.Dependencies[serde.ID]
	if !reflect.DeepEqual(children, []string{helper.ID}) {
		t.Errorf("relationships not resolved: %v", s.Dependencies)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    Format
		wantErr bool
	}{
		{"cyclonedx", `{"bomFormat": "CycloneDX", "specVersion": "1.4"}`, FormatCycloneDX, false},
		{"spdx", `{"spdxVersion": "SPDX-2.3"}`, FormatSPDX, false},
		{"both markers", `{"bomFormat": "CycloneDX", "spdxVersion": "SPDX-2.3"}`, "", true},
		{"neither marker", `{"hello": "world"}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect([]byte(tt.data))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Detect: %v", err)
			}
			if got != tt.want {
				t.Errorf("Detect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectAmbiguityError(t *testing.T) {
	_, err := Detect([]byte(`{"hello": "world"}`))
	if !errors.Is(err, ErrAmbiguousFormat) {
		t.Errorf("expected ErrAmbiguousFormat, got %v", err)
	}
}

func TestRead(t *testing.T) {
	t.Run("auto detects cyclonedx", func(t *testing.T) {
		s, err := Read([]byte(cdxFixture), FormatAuto)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if len(s.Components) != 2 {
			t.Errorf("components = %d", len(s.Components))
		}
	})

	t.Run("auto detects spdx", func(t *testing.T) {
		s, err := Read([]byte(spdxFixture), FormatAuto)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if len(s.Components) != 2 {
			t.Errorf("components = %d", len(s.Components))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if _, err := Read([]byte("  \n"), FormatAuto); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("expected ErrEmptyInput, got %v", err)
		}
	})

	t.Run("malformed json is a parse error", func(t *testing.T) {
		_, err := Read([]byte(`{"bomFormat": "CycloneDX"`), FormatCycloneDX)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("expected ParseError, got %v", err)
		}
	})

	t.Run("self diff after reading twice", func(t *testing.T) {
		s1, err := Read([]byte(cdxFixture), FormatAuto)
		if err != nil {
			t.Fatalf("first read: %v", err)
		}
		s2, err := Read([]byte(cdxFixture), FormatAuto)
		if err != nil {
			t.Fatalf("second read: %v", err)
		}
		s1.Normalize()
		s2.Normalize()
		if !reflect.DeepEqual(s1, s2) {
			t.Errorf("two reads of the same bytes differ after normalization")
		}
	})
}

func TestParseFormat(t *testing.T) {
	for _, ok := range []string{"auto", "cyclonedx", "spdx"} {
		if _, err := ParseFormat(ok); err != nil {
			t.Errorf("ParseFormat(%q): %v", ok, err)
		}
	}
	if _, err := ParseFormat("syft"); err == nil {
		t.Errorf("ParseFormat accepted an unknown format")
	}
}
