package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const defaultYouTubeAPIURL = "https://www.googleapis.com/youtube/v3"

// YouTubeAPIClient checks live broadcasts through the YouTube Data API v3.
// The search endpoint only accepts channel IDs, so handle and user entries
// still go through live-page resolution.
type YouTubeAPIClient struct {
	// Key is the Data API key.
	Key string
	// HTTPClient is used for API calls. Defaults to http.DefaultClient.
	HTTPClient *http.Client
	// APIBaseURL overrides the Data API base URL in tests.
	APIBaseURL string
}

// Configured reports whether an API key is present.
func (c *YouTubeAPIClient) Configured() bool {
	return c != nil && c.Key != ""
}

// LiveVideoIDs returns the IDs of live broadcasts on the given channel.
func (c *YouTubeAPIClient) LiveVideoIDs(ctx context.Context, channelID string) ([]string, error) {
	base := c.APIBaseURL
	if base == "" {
		base = defaultYouTubeAPIURL
	}

	query := url.Values{}
	query.Set("part", "id")
	query.Set("channelId", channelID)
	query.Set("eventType", "live")
	query.Set("type", "video")
	query.Set("key", c.Key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/search?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("search live broadcasts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search live broadcasts: unexpected status %s", resp.Status)
	}

	var payload struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]string, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}

	return ids, nil
}

func (c *YouTubeAPIClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}

	return http.DefaultClient
}
