// Package client implements the hairoku-ctl operations.
//
// Each operation connects to the recorder daemon, performs one control call
// (start, stop, status, monitor) and prints a readable summary.
package client
