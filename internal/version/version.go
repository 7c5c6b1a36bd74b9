package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the semantic version of the build, overridden via ldflags.
	Version = "0.1.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the semantic version string. It is also the version
// stamped into tool manifests.
func Short() string {
	return Version
}

// Full renders version, commit, build time and the Go runtime in one line.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s, %s",
		Version, Commit, BuildTime, runtime.Version())
}
