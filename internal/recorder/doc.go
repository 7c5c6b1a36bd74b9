// Package recorder captures live streams to disk. The Engine drives
// the external tools (streamlink, yt-dlp, ffmpeg) with per-platform
// backend selection and size-based segment rotation; the Manager owns
// the concurrent recording sessions of a daemon process.
package recorder
