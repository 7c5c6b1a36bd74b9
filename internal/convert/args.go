package convert

import (
	"fmt"
	"strings"
)

// CompressOptions tune the space-saving re-encode.
type CompressOptions struct {
	// Codec defaults to libx265.
	Codec string
	// Preset defaults to medium.
	Preset string
	// MaxHeight caps the output resolution, zero keeps the input size.
	MaxHeight int
	// FPS caps the frame rate, zero keeps the input rate.
	FPS int
	// VideoBitrateKbps defaults to 2500.
	VideoBitrateKbps int
	// AudioBitrateKbps defaults to 128.
	AudioBitrateKbps int
	// KeepOriginal leaves the uncompressed file in place.
	KeepOriginal bool
}

func mp4CopyArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-c", "copy",
		"-bsf:a", "aac_adtstoasc",
		"-movflags", "+faststart",
		outputPath,
	}
}

func mp4ReencodeArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
		outputPath,
	}
}

func mp4LightArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "28",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		outputPath,
	}
}

func containerCopyArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-c", "copy",
		outputPath,
	}
}

func audioArgs(inputPath, outputPath, extension string) []string {
	codec := "pcm_s16le"
	if extension == ".mp3" {
		codec = "libmp3lame"
	}

	return []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-c:a", codec,
		"-b:a", "192k",
		outputPath,
	}
}

func compressArgs(inputPath, outputPath string, opts CompressOptions) []string {
	codec := opts.Codec
	if codec == "" {
		codec = "libx265"
	}

	preset := opts.Preset
	if preset == "" {
		preset = "medium"
	}

	videoBitrate := opts.VideoBitrateKbps
	if videoBitrate <= 0 {
		videoBitrate = 2500
	}

	audioBitrate := opts.AudioBitrateKbps
	if audioBitrate <= 0 {
		audioBitrate = 128
	}

	args := []string{
		"-y",
		"-i", inputPath,
	}

	var filters []string

	if opts.MaxHeight > 0 {
		filters = append(filters, fmt.Sprintf(`scale=-2:min(ih\,%d)`, opts.MaxHeight))
	}

	if opts.FPS > 0 {
		filters = append(filters, fmt.Sprintf("fps=%d", opts.FPS))
	}

	if len(filters) > 0 {
		args = append(args, "-vf", strings.Join(filters, ","))
	}

	args = append(args,
		"-c:v", codec,
		"-preset", preset,
		"-b:v", fmt.Sprintf("%dk", videoBitrate),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", fmt.Sprintf("%dk", audioBitrate),
	)

	// QuickTime players need the hvc1 tag to recognize HEVC tracks.
	if codec == "libx265" {
		args = append(args, "-tag:v", "hvc1")
	}

	args = append(args, "-movflags", "+faststart", outputPath)

	return args
}

// shouldRetryWithReencode classifies ffmpeg stderr output that a
// plain stream copy cannot get past.
func shouldRetryWithReencode(stderr string) bool {
	return strings.Contains(stderr, "Malformed AAC bitstream") ||
		strings.Contains(stderr, "aac_adtstoasc") ||
		strings.Contains(stderr, "av_interleaved_write_frame")
}
