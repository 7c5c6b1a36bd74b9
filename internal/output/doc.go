// Package output decides where recordings land on disk: per-channel
// and per-date folders, default timestamped names, extension handling
// and collision-free numbering for segments and converted files.
package output
