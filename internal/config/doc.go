// Package config defines the settings shared by the recorder binaries and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type covers the daemon address, recording defaults, the
// automatic monitor lists and the managed-tool installer options.
package config
