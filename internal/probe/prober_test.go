package probe

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hairoku/hairoku/internal/toolchain"
	"github.com/stretchr/testify/require"
)

// writeFakeTool drops an executable shell script into dir under the tool's name.
func writeFakeTool(t *testing.T, dir, name, script string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake shell tools are not runnable on windows")
	}

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
}

// TestProberStreamlinkLive checks liveness detection from streamlink JSON output.
func TestProberStreamlinkLive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFakeTool(t, dir, toolchain.Streamlink,
		`echo '{"plugin":"twitch","streams":{"best":{},"720p":{}}}'`)

	prober := &Prober{Tools: &toolchain.Resolver{InstallDir: dir}}

	require.True(t, prober.IsLive(context.Background(), "https://www.twitch.tv/somechannel"))
}

// TestProberStreamlinkOffline checks the offline verdict from an error payload.
func TestProberStreamlinkOffline(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFakeTool(t, dir, toolchain.Streamlink,
		`echo '{"error":"No playable streams found on this URL"}'; exit 1`)

	prober := &Prober{Tools: &toolchain.Resolver{InstallDir: dir}}

	require.False(t, prober.IsLive(context.Background(), "https://www.twitch.tv/somechannel"))
}

// TestProberYtdlpFallback checks yt-dlp usage when streamlink rejects the URL.
func TestProberYtdlpFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFakeTool(t, dir, toolchain.Streamlink,
		`echo '{"error":"No plugin can handle URL: https://example.com/live"}'; exit 1`)
	writeFakeTool(t, dir, toolchain.YtDlp,
		`echo 'https://cdn.example.com/stream.m3u8'`)

	prober := &Prober{Tools: &toolchain.Resolver{InstallDir: dir}}

	require.True(t, prober.IsLive(context.Background(), "https://example.com/live"))
}

// TestStreamURLs checks direct URL resolution and the no-stream error.
func TestStreamURLs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFakeTool(t, dir, toolchain.YtDlp,
		"echo 'https://cdn.example.com/video.m3u8'\necho 'https://cdn.example.com/audio.m3u8'")

	prober := &Prober{Tools: &toolchain.Resolver{InstallDir: dir}}

	urls, err := prober.StreamURLs(context.Background(), "https://example.com/live", "bestvideo+bestaudio/best")
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://cdn.example.com/video.m3u8",
		"https://cdn.example.com/audio.m3u8",
	}, urls)
}

// TestStreamURLOffline checks ErrNoStream for failing yt-dlp runs.
func TestStreamURLOffline(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFakeTool(t, dir, toolchain.YtDlp,
		`echo 'ERROR: this channel is offline' >&2; exit 1`)

	prober := &Prober{Tools: &toolchain.Resolver{InstallDir: dir}}

	_, err := prober.StreamURL(context.Background(), "https://example.com/live")
	require.ErrorIs(t, err, ErrNoStream)
}

// TestPrefersYtdlp checks the yt-dlp-preferred host list.
func TestPrefersYtdlp(t *testing.T) {
	t.Parallel()

	require.True(t, prefersYtdlp("https://whowatch.tv/viewer/12345"))
	require.True(t, prefersYtdlp("https://www.bigo.tv/12345"))
	require.False(t, prefersYtdlp("https://www.twitch.tv/somechannel"))
}
