package recorder

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hairoku/hairoku/internal/config"
	"github.com/hairoku/hairoku/internal/logger"
	"github.com/hairoku/hairoku/internal/probe"
	"github.com/hairoku/hairoku/internal/toolchain"
)

// ErrNoData is returned when a capture attempt produced no output at all.
var ErrNoData = errors.New("no stream data captured")

// Request describes one capture job.
type Request struct {
	// URL is the stream page URL.
	URL string
	// Quality is the requested stream quality (best, 720p, audio_only...).
	Quality string
	// OutputPath is the base .ts path; rotated segments derive from it.
	OutputPath string
	// RetryCount and RetryWait govern reconnect attempts while the
	// stream is still live.
	RetryCount int
	RetryWait  time.Duration
	// HTTPTimeout and StreamTimeout are passed to streamlink.
	HTTPTimeout   time.Duration
	StreamTimeout time.Duration
	// MaxSizeMB rotates output into a new segment near this size.
	// Zero disables rotation.
	MaxSizeMB int
	// SizeMarginMB is subtracted from MaxSizeMB so a segment finishes
	// below the hard limit.
	SizeMarginMB int
	// OnProgress, when set, receives the cumulative captured byte count.
	OnProgress func(bytesWritten int64)
}

// Result is the outcome of a capture job.
type Result struct {
	// SegmentPaths lists the produced files in capture order.
	SegmentPaths []string
	// BytesWritten is the total captured payload size.
	BytesWritten int64
}

// rotationThreshold computes the byte count at which a segment rotates.
func rotationThreshold(maxSizeMB, marginMB int) int64 {
	if maxSizeMB <= 0 {
		return 0
	}

	maxBytes := int64(maxSizeMB) << 20

	threshold := maxBytes
	if marginMB > 0 {
		threshold -= int64(marginMB) << 20
	}

	if threshold <= 0 {
		threshold = maxBytes
	}

	return threshold
}

// Engine captures live streams, choosing between the streamlink
// and yt-dlp backends per platform and configuration.
type Engine struct {
	Tools   *toolchain.Resolver
	Prober  *probe.Prober
	YouTube *probe.YouTubeResolver
	// YouTubeBackend selects the capture tool for YouTube URLs,
	// config.YouTubeBackendStreamlink or config.YouTubeBackendYtdlp.
	YouTubeBackend string
}

// Record captures the stream into one or more .ts segments. The backend
// choice and fallback order follow the platform: whowatch and bigo go
// straight to yt-dlp, YouTube honors the configured backend, everything
// else starts with streamlink and falls back to yt-dlp.
func (e *Engine) Record(ctx context.Context, req *Request) (*Result, error) {
	ytdlpAvailable := e.Tools.Available(toolchain.YtDlp)

	if isYouTubeURL(req.URL) && ytdlpAvailable &&
		strings.EqualFold(e.YouTubeBackend, config.YouTubeBackendYtdlp) {
		if result, err := e.recordYouTubeWithYtdlp(ctx, req); err == nil {
			return result, nil
		}

		logger.Warn(ctx, "yt-dlp capture failed, falling back to streamlink")
	}

	if prefersYtdlpCapture(req.URL) && ytdlpAvailable {
		return e.recordWithYtdlp(ctx, req, req.URL)
	}

	result, err := e.recordWithStreamlink(ctx, req)
	if err == nil {
		return result, nil
	}

	if !ytdlpAvailable {
		return nil, err
	}

	logger.WarnKV(ctx, "streamlink capture failed, trying yt-dlp", "error", err)

	return e.recordWithYtdlp(ctx, req, req.URL)
}

// recordYouTubeWithYtdlp resolves the live watch URL first so yt-dlp
// records the right stream, then retries with the raw URL.
func (e *Engine) recordYouTubeWithYtdlp(ctx context.Context, req *Request) (*Result, error) {
	logger.Info(ctx, "capturing youtube stream with yt-dlp")

	if resolved := e.YouTube.ResolveYouTubeWatchURL(ctx, req.URL); resolved != "" {
		if result, err := e.recordWithYtdlp(ctx, req, resolved); err == nil {
			return result, nil
		}
	}

	return e.recordWithYtdlp(ctx, req, req.URL)
}

// ytdlpPreferredHosts resolve more reliably through yt-dlp.
var ytdlpPreferredHosts = []string{"whowatch.tv"}

func prefersYtdlpCapture(url string) bool {
	for _, fragment := range ytdlpPreferredHosts {
		if strings.Contains(url, fragment) {
			return true
		}
	}

	return false
}

func isYouTubeURL(url string) bool {
	return strings.Contains(url, "youtube.com") || strings.Contains(url, "youtu.be")
}
