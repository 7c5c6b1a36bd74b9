package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestYouTubeLivePageURL checks /live page construction per entry kind.
func TestYouTubeLivePageURL(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		"https://www.youtube.com/channel/UCxyz/live",
		YouTubeLivePageURL("UCxyz"))
	require.Equal(t,
		"https://www.youtube.com/@somehandle/live",
		YouTubeLivePageURL("@somehandle"))
	require.Equal(t,
		"https://www.youtube.com/user/someuser/live",
		YouTubeLivePageURL("https://www.youtube.com/user/someuser"))
	require.Equal(t, "", YouTubeLivePageURL("https://youtu.be/abc123"))
	require.Equal(t, "", YouTubeLivePageURL(""))
}

// TestResolveLiveByRedirect checks watch URL detection through the redirect.
func TestResolveLiveByRedirect(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/channel/UCxyz/live", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/watch?v=liveVid01", http.StatusFound)
	})
	mux.HandleFunc("/watch", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	resolver := &YouTubeResolver{HTTPClient: server.Client()}

	result, err := resolver.ResolveLive(context.Background(), server.URL+"/channel/UCxyz/live")
	require.NoError(t, err)
	require.Equal(t, server.URL+"/watch?v=liveVid01", result.WatchURL)
}

// TestResolveLiveFromHTML checks videoId scraping when no redirect happens.
func TestResolveLiveFromHTML(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><script>var ytInitialPlayerResponse =
			{"videoDetails":{"videoId":"liveVid02","isLiveNow":true}};</script></html>`))
	}))
	t.Cleanup(server.Close)

	resolver := &YouTubeResolver{HTTPClient: server.Client()}

	result, err := resolver.ResolveLive(context.Background(), server.URL+"/live")
	require.NoError(t, err)
	require.Equal(t, "https://www.youtube.com/watch?v=liveVid02", result.WatchURL)
	require.Equal(t, []string{"liveVid02"}, result.LiveVideoIDs)
}

// TestResolveLiveOffline checks the empty result for channels not streaming.
func TestResolveLiveOffline(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>channel page</body></html>"))
	}))
	t.Cleanup(server.Close)

	resolver := &YouTubeResolver{HTTPClient: server.Client()}

	result, err := resolver.ResolveLive(context.Background(), server.URL+"/live")
	require.NoError(t, err)
	require.Empty(t, result.WatchURL)
	require.Empty(t, result.LiveVideoIDs)
}

// TestLiveURLsSkipsParallelStreams checks the multi-stream guard.
func TestLiveURLsSkipsParallelStreams(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><script>
			{"videoId":"liveVidAA","isLiveNow":true}
			{"videoId":"liveVidBB","isLiveNow":true}
		</script></html>`))
	}))
	t.Cleanup(server.Close)

	resolver := &YouTubeResolver{HTTPClient: server.Client()}

	result, err := resolver.ResolveLive(context.Background(), server.URL+"/live")
	require.NoError(t, err)
	require.Len(t, result.LiveVideoIDs, 2)
}

// TestExtractWatchURL checks the regex cascade over page HTML.
func TestExtractWatchURL(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		"https://www.youtube.com/watch?v=direct01",
		extractWatchURL(`see https://www.youtube.com/watch?v=direct01 now`))
	require.Equal(t,
		"https://www.youtube.com/watch?v=jsonVid01",
		extractWatchURL(`{"videoId":"jsonVid01"}`))
	require.Equal(t,
		"https://www.youtube.com/watch?v=hrefVid01",
		extractWatchURL(`<a href="/watch?v=hrefVid01">`))
	require.Equal(t, "", extractWatchURL("nothing here"))
}
