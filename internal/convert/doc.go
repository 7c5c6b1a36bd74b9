// Package convert post-processes captured transport streams with
// ffmpeg: remuxing into mp4 and other containers, extracting audio
// and compressing finished recordings.
package convert
