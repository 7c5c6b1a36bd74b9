// Package toolchain locates the external recording tools
// (ffmpeg, streamlink, yt-dlp) on the host.
package toolchain

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Tool names as they appear on disk and in install manifests.
const (
	FFmpeg     = "ffmpeg"
	Streamlink = "streamlink"
	YtDlp      = "yt-dlp"
)

// FFmpegPathEnv overrides ffmpeg discovery when set.
const FFmpegPathEnv = "FFMPEG_PATH"

// ErrToolNotFound is returned when a required external tool is missing.
var ErrToolNotFound = errors.New("external tool not found")

// Resolver finds tool executables, preferring a managed
// install directory over the system PATH.
type Resolver struct {
	// InstallDir is where the installer places managed tool copies.
	// Empty means PATH-only lookup.
	InstallDir string
}

// FindFFmpeg resolves the ffmpeg executable. The FFMPEG_PATH
// environment variable wins over the install directory and PATH.
func (r *Resolver) FindFFmpeg() (string, error) {
	if envPath := os.Getenv(FFmpegPathEnv); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	return r.Find(FFmpeg)
}

// Find resolves a tool by name from the install directory or PATH.
func (r *Resolver) Find(name string) (string, error) {
	if r.InstallDir != "" {
		candidate := filepath.Join(r.InstallDir, executableName(name))
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", ErrToolNotFound
	}

	return path, nil
}

// Available reports whether a tool can be resolved.
func (r *Resolver) Available(name string) bool {
	_, err := r.Find(name)

	return err == nil
}

func executableName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}

	return name
}
