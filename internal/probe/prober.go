package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hairoku/hairoku/internal/logger"
	"github.com/hairoku/hairoku/internal/toolchain"
)

// ErrNoStream is returned when a URL has no stream running.
var ErrNoStream = errors.New("no stream available")

// Prober checks arbitrary stream URLs for liveness using the
// external tools, for platforms without a usable API.
type Prober struct {
	Tools *toolchain.Resolver
}

// ytdlpPreferred lists host fragments whose streams resolve
// more reliably through yt-dlp than streamlink.
var ytdlpPreferred = []string{"whowatch.tv", "bigo.tv", "bigo.live"}

func prefersYtdlp(url string) bool {
	for _, fragment := range ytdlpPreferred {
		if strings.Contains(url, fragment) {
			return true
		}
	}

	return false
}

// IsLive reports whether the URL currently carries a live stream.
// Streamlink is checked first except for yt-dlp-preferred hosts,
// and yt-dlp serves as the fallback either way.
func (p *Prober) IsLive(ctx context.Context, url string) bool {
	ytdlpAvailable := p.Tools.Available(toolchain.YtDlp)

	if prefersYtdlp(url) && ytdlpAvailable {
		_, err := p.StreamURL(ctx, url)
		return err == nil
	}

	live, err := p.streamlinkLive(ctx, url)
	if err == nil {
		if live {
			return true
		}

		if prefersYtdlp(url) && ytdlpAvailable {
			_, err := p.StreamURL(ctx, url)
			return err == nil
		}

		return false
	}

	logger.DebugKV(ctx, "streamlink probe failed", "url", url, "error", err)

	if ytdlpAvailable {
		_, err := p.StreamURL(ctx, url)
		return err == nil
	}

	return false
}

// streamlinkLive asks streamlink for the URL's stream catalog in JSON form.
func (p *Prober) streamlinkLive(ctx context.Context, url string) (bool, error) {
	streamlinkPath, err := p.Tools.Find(toolchain.Streamlink)
	if err != nil {
		return false, err
	}

	cmd := exec.CommandContext(ctx, streamlinkPath, "--json", url)

	var stdout bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = nil

	// streamlink exits non-zero for offline channels, the JSON
	// payload still tells live from genuinely failed probes.
	runErr := cmd.Run()

	var payload struct {
		Error   string                     `json:"error"`
		Streams map[string]json.RawMessage `json:"streams"`
	}

	if err := json.Unmarshal(stdout.Bytes(), &payload); err != nil {
		if runErr != nil {
			return false, fmt.Errorf("run streamlink: %w", runErr)
		}

		return false, fmt.Errorf("parse streamlink output: %w", err)
	}

	if payload.Error != "" {
		if strings.Contains(payload.Error, "No plugin can handle URL") {
			return false, fmt.Errorf("streamlink cannot handle url: %s", payload.Error)
		}

		return false, nil
	}

	return len(payload.Streams) > 0, nil
}

// StreamURL resolves the direct media URL of a live stream via yt-dlp.
// Offline or unsupported URLs yield ErrNoStream.
func (p *Prober) StreamURL(ctx context.Context, url string) (string, error) {
	urls, err := p.StreamURLs(ctx, url, "best")
	if err != nil {
		return "", err
	}

	return urls[0], nil
}

// StreamURLs resolves the direct media URLs for a stream with an explicit
// yt-dlp format selector. Combined video+audio formats yield one URL,
// split formats yield two.
func (p *Prober) StreamURLs(ctx context.Context, url, formatSelector string) ([]string, error) {
	ytdlpPath, err := p.Tools.Find(toolchain.YtDlp)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, ytdlpPath,
		"-g",
		"-f", formatSelector,
		"--no-playlist",
		"--no-warnings",
		url,
	)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		tail := lastLines(stderr.String(), 3)
		if tail == "" {
			tail = err.Error()
		}

		return nil, fmt.Errorf("%w: %s", ErrNoStream, tail)
	}

	var urls []string

	for _, line := range strings.Split(stdout.String(), "\n") {
		if candidate := strings.TrimSpace(line); candidate != "" {
			urls = append(urls, candidate)
		}
	}

	if len(urls) == 0 {
		return nil, ErrNoStream
	}

	return urls, nil
}

// lastLines returns the trailing n lines of text, joined.
func lastLines(text string, n int) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
