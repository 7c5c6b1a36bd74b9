// Package common holds helpers shared by the recorder client services.
//
// It wraps the RecorderService gRPC client with per-call timeouts and detects
// the current system actor (hostname/username) stamped on audit fields.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
