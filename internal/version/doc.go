// Package version carries the build metadata shared by all recorder binaries.
//
// Version, Commit and BuildTime are ldflags-injected; local builds fall back
// to placeholder values. Short feeds the tool manifest, Full the CLI output.
package version
