package version

import (
	"fmt"
	"runtime"
)

// Version information - set by goreleaser ldflags
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns formatted version information
func Info() string {
	return fmt.Sprintf("sbom-diff %s\n  commit: %s\n  built:  %s\n  go:     %s",
		Version, Commit, Date, runtime.Version())
}

// Short returns just the version string
func Short() string {
	return Version
}
