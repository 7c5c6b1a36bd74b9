// Package tools manages the external recording binaries.
//
// A YAML manifest describes the published ffmpeg, streamlink and yt-dlp
// binaries with SHA-512 checksums. The installer downloads them to a
// temporary directory, verifies the checksums and swaps the binaries in
// place; a marker file prevents concurrent runs and binaries belonging to
// live processes are never replaced.
package tools
