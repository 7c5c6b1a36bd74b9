package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/hairoku/hairoku/internal/logger"
	"github.com/hairoku/hairoku/internal/output"
	"github.com/hairoku/hairoku/internal/toolchain"
)

// Format names an output container or encoding profile.
type Format string

// Supported output formats. FormatTS keeps the captured
// transport stream as is.
const (
	FormatTS       Format = "ts"
	FormatMP4      Format = "mp4"
	FormatMP4Light Format = "mp4_light"
	FormatMOV      Format = "mov"
	FormatFLV      Format = "flv"
	FormatMKV      Format = "mkv"
	FormatMP3      Format = "mp3"
	FormatWAV      Format = "wav"
)

// DefaultFormat is used when an unknown format is requested.
const DefaultFormat = FormatMP4

var (
	// ErrEmptyInput is returned for missing or zero-byte recordings.
	ErrEmptyInput = errors.New("conversion input is missing or empty")

	errConversionFailed = errors.New("ffmpeg conversion failed")
)

// NormalizeFormat maps arbitrary user input onto a supported format.
func NormalizeFormat(raw string) Format {
	cleaned := Format(strings.ToLower(strings.TrimSpace(raw)))

	switch cleaned {
	case FormatTS, FormatMP4, FormatMP4Light, FormatMOV,
		FormatFLV, FormatMKV, FormatMP3, FormatWAV:
		return cleaned
	default:
		return DefaultFormat
	}
}

// Converter turns captured transport streams into their final format
// with ffmpeg, deleting the source on success unless told otherwise.
type Converter struct {
	Tools *toolchain.Resolver
	// KeepSource leaves the captured .ts file in place after conversion.
	KeepSource bool
}

// Convert transforms one recording according to the format. The TS
// format passes through unchanged. Returns the path of the final file.
func (c *Converter) Convert(ctx context.Context, inputPath string, format Format) (string, error) {
	normalized := NormalizeFormat(string(format))

	if normalized == FormatTS {
		logger.DebugKV(ctx, "keeping transport stream as is", "path", inputPath)
		return inputPath, nil
	}

	if err := checkInput(inputPath); err != nil {
		return "", err
	}

	if normalized == FormatMP4 && strings.EqualFold(ext(inputPath), ".mp4") {
		logger.DebugKV(ctx, "input is already mp4, skipping conversion", "path", inputPath)
		return inputPath, nil
	}

	switch normalized {
	case FormatMP4:
		return c.toMP4(ctx, inputPath)
	case FormatMP4Light:
		return c.toMP4Light(ctx, inputPath)
	case FormatMOV:
		return c.containerCopy(ctx, inputPath, ".mov")
	case FormatFLV:
		return c.containerCopy(ctx, inputPath, ".flv")
	case FormatMKV:
		return c.containerCopy(ctx, inputPath, ".mkv")
	case FormatMP3:
		return c.toAudio(ctx, inputPath, ".mp3")
	case FormatWAV:
		return c.toAudio(ctx, inputPath, ".wav")
	default:
		return c.toMP4(ctx, inputPath)
	}
}

// toMP4 remuxes into mp4 without re-encoding. Broken AAC bitstreams
// trigger one retry that re-encodes the audio track.
func (c *Converter) toMP4(ctx context.Context, inputPath string) (string, error) {
	outputPath := output.WithExtension(inputPath, ".mp4")

	logger.InfoKV(ctx, "converting to mp4", "input", inputPath, "output", outputPath)

	stderr, err := c.runFFmpeg(ctx, mp4CopyArgs(inputPath, outputPath))
	if err == nil {
		c.removeSource(ctx, inputPath)
		return outputPath, nil
	}

	if !shouldRetryWithReencode(stderr) {
		return "", fmt.Errorf("%w: %s", errConversionFailed, lastLines(stderr, 5))
	}

	// The stream copy left a broken file behind.
	_ = os.Remove(outputPath)

	logger.InfoKV(ctx, "retrying mp4 conversion with audio re-encode", "input", inputPath)

	stderr, err = c.runFFmpeg(ctx, mp4ReencodeArgs(inputPath, outputPath))
	if err != nil {
		return "", fmt.Errorf("%w: %s", errConversionFailed, lastLines(stderr, 5))
	}

	c.removeSource(ctx, inputPath)

	return outputPath, nil
}

func (c *Converter) toMP4Light(ctx context.Context, inputPath string) (string, error) {
	outputPath := output.WithExtension(inputPath, ".mp4")

	logger.InfoKV(ctx, "converting to lightweight mp4", "input", inputPath, "output", outputPath)

	stderr, err := c.runFFmpeg(ctx, mp4LightArgs(inputPath, outputPath))
	if err != nil {
		return "", fmt.Errorf("%w: %s", errConversionFailed, lastLines(stderr, 5))
	}

	c.removeSource(ctx, inputPath)

	return outputPath, nil
}

func (c *Converter) containerCopy(ctx context.Context, inputPath, extension string) (string, error) {
	outputPath := output.WithExtension(inputPath, extension)

	logger.InfoKV(ctx, "remuxing container", "input", inputPath, "output", outputPath)

	stderr, err := c.runFFmpeg(ctx, containerCopyArgs(inputPath, outputPath))
	if err != nil {
		return "", fmt.Errorf("%w: %s", errConversionFailed, lastLines(stderr, 5))
	}

	c.removeSource(ctx, inputPath)

	return outputPath, nil
}

func (c *Converter) toAudio(ctx context.Context, inputPath, extension string) (string, error) {
	outputPath := output.WithExtension(inputPath, extension)

	logger.InfoKV(ctx, "extracting audio", "input", inputPath, "output", outputPath)

	stderr, err := c.runFFmpeg(ctx, audioArgs(inputPath, outputPath, extension))
	if err != nil {
		return "", fmt.Errorf("%w: %s", errConversionFailed, lastLines(stderr, 5))
	}

	c.removeSource(ctx, inputPath)

	return outputPath, nil
}

// Compress re-encodes a finished recording with a space-saving codec.
// Audio-only files pass through unchanged.
func (c *Converter) Compress(ctx context.Context, inputPath string, opts CompressOptions) (string, error) {
	if err := checkInput(inputPath); err != nil {
		return "", err
	}

	extension := strings.ToLower(ext(inputPath))
	if extension == ".mp3" || extension == ".wav" {
		logger.DebugKV(ctx, "skipping compression for audio file", "path", inputPath)
		return inputPath, nil
	}

	outputPath := output.CompressedPath(inputPath)

	logger.InfoKV(ctx, "compressing recording", "input", inputPath, "output", outputPath)

	stderr, err := c.runFFmpeg(ctx, compressArgs(inputPath, outputPath, opts))
	if err != nil {
		return "", fmt.Errorf("%w: %s", errConversionFailed, lastLines(stderr, 5))
	}

	if !opts.KeepOriginal {
		if err := os.Remove(inputPath); err != nil {
			logger.WarnKV(ctx, "failed to remove uncompressed file", "path", inputPath, "error", err)
		}
	}

	return outputPath, nil
}

// runFFmpeg executes ffmpeg with the given arguments and
// returns its stderr output for diagnostics.
func (c *Converter) runFFmpeg(ctx context.Context, args []string) (string, error) {
	ffmpegPath, err := c.Tools.FindFFmpeg()
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, ffmpegPath, args...)

	var stderr bytes.Buffer

	cmd.Stdout = nil
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	return stderr.String(), runErr
}

// removeSource deletes the captured .ts after a successful conversion.
func (c *Converter) removeSource(ctx context.Context, inputPath string) {
	if c.KeepSource {
		logger.DebugKV(ctx, "keeping source transport stream", "path", inputPath)
		return
	}

	if err := os.Remove(inputPath); err != nil {
		logger.WarnKV(ctx, "failed to remove source file", "path", inputPath, "error", err)
		return
	}

	logger.DebugKV(ctx, "removed source transport stream", "path", inputPath)
}

func checkInput(inputPath string) error {
	info, err := os.Stat(inputPath)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyInput, inputPath)
	}

	return nil
}

func ext(path string) string {
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		return path[idx:]
	}

	return ""
}

func lastLines(text string, n int) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
