// Package record implements the one-shot foreground recorder.
//
// Unlike the daemon it needs no running server: it captures a single URL
// until the stream ends or the process is interrupted and converts the
// result in place.
package record
