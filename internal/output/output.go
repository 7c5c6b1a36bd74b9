package output

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/hairoku/hairoku/internal/platform"
)

// maxUniqueAttempts bounds the numbered-path search before
// falling back to the overflow name.
const maxUniqueAttempts = 1000

// DirPermissions is the mode for created recording folders.
const DirPermissions = 0o755

var validExtension = regexp.MustCompile(`^\.[A-Za-z0-9]{1,5}$`)

// Options control how recording output paths are laid out.
type Options struct {
	// ChannelFolders places each recording under a per-channel folder.
	ChannelFolders bool
	// DateFolders adds a YYYY-MM-DD folder under the channel folder.
	DateFolders bool
	// FilenameWithChannel prefixes generated names with the channel label.
	FilenameWithChannel bool
}

// DefaultName returns the timestamped default recording
// name, formatted Japanese style.
func DefaultName(now time.Time) string {
	return now.Format("2006年01月02日-15時04分05秒")
}

// Resolve builds the full output path for a new recording, creating the
// directories it needs. An empty filename gets the timestamped default,
// a name without a usable extension gets ".ts", and a path that already
// exists gets a numeric suffix.
func Resolve(outputDir, filename, rawURL, channelLabel string, opts Options) (string, error) {
	dir := outputDir

	if opts.ChannelFolders {
		label := channelLabel
		if label == "" && rawURL != "" {
			// Platforms with a well-known URL shape get their short
			// channel name; everything else falls back to the generic label.
			label = platform.FolderLabel(rawURL)
		}

		if label != "" {
			label = platform.SafeFilenameComponent(label)
		} else if rawURL != "" {
			label = platform.ChannelLabel(rawURL)
		}

		if label != "" {
			dir = filepath.Join(dir, label)
		}
	}

	if opts.DateFolders {
		dir = filepath.Join(dir, time.Now().Format("2006-01-02"))
	}

	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	name := filename
	if name == "" {
		name = DefaultName(time.Now())

		if opts.FilenameWithChannel {
			labelSource := channelLabel
			if labelSource == "" && rawURL != "" {
				labelSource = platform.ChannelLabel(rawURL)
			}

			if label := platform.SafeFilenameComponent(labelSource); label != "" && labelSource != "" {
				name = label + "_" + name
			}
		}
	}

	if !validExtension.MatchString(filepath.Ext(name)) {
		name += ".ts"
	}

	return EnsureUnique(filepath.Join(dir, name)), nil
}

// EnsureUnique returns the path unchanged when it is free, otherwise
// the first free numbered variant, or an "_overflow" variant as the
// last resort.
func EnsureUnique(path string) string {
	if !exists(path) {
		return path
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)

	for i := 1; i < maxUniqueAttempts; i++ {
		numbered := fmt.Sprintf("%s_%d%s", base, i, ext)
		if !exists(numbered) {
			return numbered
		}
	}

	return base + "_overflow" + ext
}

// SegmentName is the raw name of the index-th piece of a size-rotated
// recording, whether or not the path is taken. Index zero is the base
// path itself.
func SegmentName(basePath string, index int) string {
	if index <= 0 {
		return basePath
	}

	ext := filepath.Ext(basePath)
	stem := strings.TrimSuffix(basePath, ext)

	return fmt.Sprintf("%s_%03d%s", stem, index, ext)
}

// Segment names the index-th piece of a size-rotated recording,
// dodging paths that already exist.
func Segment(basePath string, index int) string {
	return EnsureUnique(SegmentName(basePath, index))
}

// WithExtension swaps the extension of a recording path,
// avoiding collisions with existing files.
func WithExtension(inputPath, ext string) string {
	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))

	candidate := base + ext
	if !exists(candidate) {
		return candidate
	}

	for i := 1; i < maxUniqueAttempts; i++ {
		numbered := fmt.Sprintf("%s_%d%s", base, i, ext)
		if !exists(numbered) {
			return numbered
		}
	}

	return base + "_overflow" + ext
}

// CompressedPath names the compressed companion of a recording.
func CompressedPath(inputPath string) string {
	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))

	candidate := base + "_compressed.mp4"
	if !exists(candidate) {
		return candidate
	}

	for i := 1; i < maxUniqueAttempts; i++ {
		numbered := fmt.Sprintf("%s_compressed_%d.mp4", base, i)
		if !exists(numbered) {
			return numbered
		}
	}

	return base + "_compressed_overflow.mp4"
}

func exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}
