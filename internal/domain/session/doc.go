// Package session contains core domain types for recording sessions.
//
// It defines Actor (who requested the recording), the session lifecycle
// State machine, and Session itself with Clone helpers to avoid leaking
// internal references.
package session
