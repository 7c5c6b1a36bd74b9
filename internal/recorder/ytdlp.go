package recorder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/hairoku/hairoku/internal/logger"
	"github.com/hairoku/hairoku/internal/output"
)

// sizePollInterval is how often the growing output file is
// checked against the rotation threshold.
const sizePollInterval = 200 * time.Millisecond

var heightPattern = regexp.MustCompile(`^(\d+)`)

// FormatSelector maps a quality setting onto a yt-dlp format expression.
func FormatSelector(quality string) string {
	cleaned := strings.ToLower(strings.TrimSpace(quality))

	switch cleaned {
	case "":
		return "bestvideo+bestaudio/best"
	case "audio_only":
		return "bestaudio"
	case "worst":
		return "worst"
	case "best":
		return "bestvideo+bestaudio/best"
	}

	if match := heightPattern.FindStringSubmatch(cleaned); match != nil {
		return fmt.Sprintf("bestvideo[height<=%[1]s]+bestaudio/best[height<=%[1]s]", match[1])
	}

	return "bestvideo+bestaudio/best"
}

// recordWithYtdlp resolves the direct media URLs with yt-dlp and hands
// them to ffmpeg for a stream copy. Split video+audio formats are muxed
// into mp4, single streams stay mpegts.
func (e *Engine) recordWithYtdlp(ctx context.Context, req *Request, captureURL string) (*Result, error) {
	streamURLs, err := e.Prober.StreamURLs(ctx, captureURL, FormatSelector(req.Quality))
	if err != nil {
		return nil, err
	}

	ffmpegPath, err := e.Tools.FindFFmpeg()
	if err != nil {
		return nil, err
	}

	basePath := req.OutputPath

	videoURL := streamURLs[0]

	var audioURL string

	if len(streamURLs) >= 2 {
		audioURL = streamURLs[1]
		basePath = strings.TrimSuffix(basePath, filepath.Ext(basePath)) + ".mp4"
	}

	logger.InfoKV(ctx, "capturing resolved stream with ffmpeg", "url", captureURL)

	threshold := rotationThreshold(req.MaxSizeMB, req.SizeMarginMB)
	result := new(Result)

	for index := 0; ; index++ {
		if ctx.Err() != nil {
			break
		}

		segmentPath := output.Segment(basePath, index)

		written, rotated, err := e.captureFFmpegSegment(
			ctx, ffmpegPath, videoURL, audioURL, segmentPath, threshold)

		if written > 0 {
			result.SegmentPaths = append(result.SegmentPaths, segmentPath)
			result.BytesWritten += written

			if req.OnProgress != nil {
				req.OnProgress(result.BytesWritten)
			}
		}

		if err != nil {
			if result.BytesWritten == 0 {
				return nil, err
			}

			logger.WarnKV(ctx, "capture ended with error", "error", err)

			break
		}

		if !rotated {
			break
		}

		logger.InfoKV(ctx, "segment size limit reached, rotating", "segment", segmentPath)
	}

	if result.BytesWritten == 0 && ctx.Err() == nil {
		removeEmptySegments(result.SegmentPaths)
		return nil, ErrNoData
	}

	return result, nil
}

// captureFFmpegSegment runs one ffmpeg copy until the stream ends, the
// context is cancelled or the segment reaches the rotation threshold.
func (e *Engine) captureFFmpegSegment(
	ctx context.Context,
	ffmpegPath, videoURL, audioURL, segmentPath string,
	threshold int64,
) (written int64, rotated bool, err error) {
	segmentCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(segmentCtx, ffmpegPath,
		ffmpegCaptureArgs(videoURL, audioURL, segmentPath)...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = killGracePeriod

	var stderr bytes.Buffer

	cmd.Stdout = nil
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return 0, false, fmt.Errorf("start ffmpeg: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error

poll:
	for {
		select {
		case waitErr = <-done:
			break poll
		case <-time.After(sizePollInterval):
			if threshold <= 0 {
				continue
			}

			if info, statErr := os.Stat(segmentPath); statErr == nil && info.Size() >= threshold {
				rotated = true

				cancel()

				waitErr = <-done

				break poll
			}
		}
	}

	if info, statErr := os.Stat(segmentPath); statErr == nil {
		written = info.Size()
	}

	// Termination by rotation or shutdown is a normal exit.
	if waitErr != nil && !rotated && ctx.Err() == nil {
		tail := lastStderrLines(stderr.String(), 5)
		if tail == "" {
			tail = waitErr.Error()
		}

		return written, false, fmt.Errorf("ffmpeg capture failed: %s", tail)
	}

	return written, rotated, nil
}

func ffmpegCaptureArgs(videoURL, audioURL, segmentPath string) []string {
	args := []string{
		"-y",
		"-loglevel", "error",
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", videoURL,
	}

	if audioURL != "" {
		args = append(args,
			"-i", audioURL,
			"-map", "0:v:0",
			"-map", "1:a:0",
			"-c", "copy",
			"-movflags", "+faststart",
			segmentPath,
		)

		return args
	}

	args = append(args,
		"-c", "copy",
		"-f", "mpegts",
		segmentPath,
	)

	return args
}

func lastStderrLines(text string, n int) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
