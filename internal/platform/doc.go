// Package platform recognizes the supported streaming services and
// normalizes the various URL and handle spellings each one accepts
// into canonical watchable URLs and filesystem-safe labels.
package platform
