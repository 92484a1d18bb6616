package sbom

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Format selects an input reader.
type Format string

const (
	FormatAuto      Format = "auto"
	FormatCycloneDX Format = "cyclonedx"
	FormatSPDX      Format = "spdx"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatAuto, FormatCycloneDX, FormatSPDX:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown format %q (supported: auto, cyclonedx, spdx)", s)
}

// Detect sniffs the top-level JSON object: bomFormat "CycloneDX" selects
// the CycloneDX reader, a spdxVersion key selects SPDX. Both or neither
// is an ErrAmbiguousFormat.
func Detect(data []byte) (Format, error) {
	var probe struct {
		BomFormat   string `json:"bomFormat"`
		SpdxVersion string `json:"spdxVersion"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", &ParseError{Format: FormatAuto, Err: err}
	}

	isCdx := probe.BomFormat == "CycloneDX"
	isSpdx := probe.SpdxVersion != ""
	switch {
	case isCdx && !isSpdx:
		return FormatCycloneDX, nil
	case isSpdx && !isCdx:
		return FormatSPDX, nil
	case isCdx && isSpdx:
		return "", fmt.Errorf("%w: document carries both CycloneDX and SPDX markers", ErrAmbiguousFormat)
	}
	return "", fmt.Errorf("%w: neither bomFormat nor spdxVersion found", ErrAmbiguousFormat)
}

// Read parses an SBOM document in the requested format; FormatAuto
// detects the format first. The returned SBOM is not normalized.
func Read(data []byte, format Format) (*Sbom, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyInput
	}

	switch format {
	case FormatCycloneDX:
		return ReadCycloneDX(data)
	case FormatSPDX:
		return ReadSPDX(data)
	default:
		detected, err := Detect(data)
		if err != nil {
			return nil, err
		}
		return Read(data, detected)
	}
}
