package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/hairoku/hairoku/internal/logger"
	"github.com/hairoku/hairoku/internal/platform"
)

// Page bodies beyond this size carry no further player metadata.
const maxLivePageBytes = 4 << 20

const livePageUserAgent = "Mozilla/5.0 (compatible; HairokuRecorder/1.0)"

var (
	watchURLPattern      = regexp.MustCompile(`https?://www\.youtube\.com/watch\?v=[\w-]{6,}`)
	videoIDPattern       = regexp.MustCompile(`"videoId":"([\w-]{6,})"`)
	watchEndpointPattern = regexp.MustCompile(`(?s)"watchEndpoint"\s*:\s*\{[^}]*"videoId"\s*:\s*"([\w-]{6,})"`)
	watchHrefPattern     = regexp.MustCompile(`/watch\?v=([\w-]{6,})`)
	liveBadgePattern     = regexp.MustCompile(`(?s)"videoId"\s*:\s*"([\w-]{6,})"[^{}]{0,400}?"(?:isLiveNow|isLive)"\s*:\s*true`)
)

// YouTubeLivePageURL builds the /live page URL for a channel entry.
// Video entries and unrecognizable inputs yield empty.
func YouTubeLivePageURL(entry string) string {
	kind, value := platform.NormalizeYouTubeEntry(entry)
	if value == "" {
		return ""
	}

	switch kind {
	case platform.YouTubeEntryChannel:
		return fmt.Sprintf("https://www.youtube.com/channel/%s/live", value)
	case platform.YouTubeEntryHandle:
		return fmt.Sprintf("https://www.youtube.com/@%s/live", value)
	case platform.YouTubeEntryUser:
		return fmt.Sprintf("https://www.youtube.com/user/%s/live", value)
	default:
		return ""
	}
}

// YouTubeResolver detects running YouTube live streams
// through the channel /live redirect, without an API key.
type YouTubeResolver struct {
	HTTPClient *http.Client
}

func (r *YouTubeResolver) httpClient() *http.Client {
	if r != nil && r.HTTPClient != nil {
		return r.HTTPClient
	}

	return http.DefaultClient
}

// LiveResult is the outcome of probing a channel's /live page.
type LiveResult struct {
	// WatchURL is the watch page of the running stream, empty when offline.
	WatchURL string
	// LiveVideoIDs lists every live video ID found on the page. More than
	// one means the channel runs parallel streams and the caller should
	// not pick one blindly.
	LiveVideoIDs []string
}

// ResolveLive fetches a /live page and extracts the stream's watch URL.
// The redirect target is checked first, then the page HTML.
func (r *YouTubeResolver) ResolveLive(ctx context.Context, livePageURL string) (*LiveResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, livePageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build live page request: %w", err)
	}

	req.Header.Set("User-Agent", livePageUserAgent)

	resp, err := r.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch live page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("live page returned status %d", resp.StatusCode)
	}

	result := new(LiveResult)

	// The client follows redirects, so the final URL may already
	// point at the watch page.
	finalURL := resp.Request.URL.String()
	if strings.Contains(finalURL, "watch?v=") || strings.Contains(finalURL, "youtu.be/") {
		result.WatchURL = finalURL
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLivePageBytes))
	if err != nil {
		if result.WatchURL != "" {
			return result, nil
		}

		return nil, fmt.Errorf("read live page: %w", err)
	}

	html := string(body)
	result.LiveVideoIDs = collectLiveVideoIDs(html)

	if result.WatchURL == "" {
		result.WatchURL = extractWatchURL(html)
	}

	return result, nil
}

// extractWatchURL scans live page HTML for the first watchable video URL.
func extractWatchURL(html string) string {
	if match := watchURLPattern.FindString(html); match != "" {
		return match
	}

	for _, pattern := range []*regexp.Regexp{videoIDPattern, watchEndpointPattern, watchHrefPattern} {
		if match := pattern.FindStringSubmatch(html); match != nil {
			return "https://www.youtube.com/watch?v=" + match[1]
		}
	}

	return ""
}

// collectLiveVideoIDs gathers the distinct video IDs the page
// marks as currently live.
func collectLiveVideoIDs(html string) []string {
	var ids []string

	seen := make(map[string]struct{})

	for _, match := range liveBadgePattern.FindAllStringSubmatch(html, -1) {
		id := match[1]
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids
}

// LiveURLs probes the given channel entries and returns the watch URLs of
// the streams running right now. Channels with several parallel live
// streams are skipped so the caller does not record an arbitrary one.
func (r *YouTubeResolver) LiveURLs(ctx context.Context, entries []string) []string {
	var liveURLs []string

	seen := make(map[string]struct{})

	for _, entry := range entries {
		livePageURL := YouTubeLivePageURL(entry)
		if livePageURL == "" {
			logger.WarnKV(ctx, "unrecognized youtube entry", "entry", entry)
			continue
		}

		result, err := r.ResolveLive(ctx, livePageURL)
		if err != nil {
			logger.WarnKV(ctx, "youtube live probe failed", "url", livePageURL, "error", err)
			continue
		}

		if len(result.LiveVideoIDs) > 1 {
			logger.InfoKV(ctx, "multiple parallel streams detected, skipping",
				"entry", entry, "video_ids", result.LiveVideoIDs)

			continue
		}

		watchURL := result.WatchURL
		if watchURL == "" && len(result.LiveVideoIDs) == 1 {
			watchURL = "https://www.youtube.com/watch?v=" + result.LiveVideoIDs[0]
		}

		if watchURL == "" {
			logger.DebugKV(ctx, "channel not live", "url", livePageURL)
			continue
		}

		if _, ok := seen[watchURL]; ok {
			continue
		}

		seen[watchURL] = struct{}{}
		liveURLs = append(liveURLs, watchURL)

		logger.InfoKV(ctx, "live stream detected", "url", livePageURL, "watch_url", watchURL)
	}

	return liveURLs
}

// ResolveYouTubeWatchURL turns any accepted YouTube input into the watch
// URL to record. Video URLs pass through, channel inputs go through the
// /live probe.
func (r *YouTubeResolver) ResolveYouTubeWatchURL(ctx context.Context, entry string) string {
	kind, _ := platform.NormalizeYouTubeEntry(entry)
	if kind == platform.YouTubeEntryVideo {
		return entry
	}

	livePageURL := YouTubeLivePageURL(entry)
	if livePageURL == "" {
		return ""
	}

	result, err := r.ResolveLive(ctx, livePageURL)
	if err != nil {
		logger.WarnKV(ctx, "youtube live resolution failed", "url", livePageURL, "error", err)
		return ""
	}

	return result.WatchURL
}
