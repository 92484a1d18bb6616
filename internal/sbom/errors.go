package sbom

import "errors"

// ErrEmptyInput is returned by Read when the input is empty or only whitespace.
var ErrEmptyInput = errors.New("empty input")

// ErrAmbiguousFormat is returned when auto-detection cannot decide
// between CycloneDX and SPDX.
var ErrAmbiguousFormat = errors.New("ambiguous sbom format")

// ParseError wraps a format-specific decoding failure. The raw input is
// never included in the message.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return string(e.Format) + " parse error: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }
