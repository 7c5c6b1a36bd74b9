// Package session persists the daemon's recording session history
// to a JSON file so it survives restarts.
package session
