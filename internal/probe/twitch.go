package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hairoku/hairoku/internal/logger"
	"github.com/hairoku/hairoku/internal/platform"
)

// Helix caps user_login filters at 100 per streams request.
const twitchStreamsBatchSize = 100

// Default Twitch endpoints, overridable in tests.
const (
	defaultTwitchTokenURL = "https://id.twitch.tv/oauth2/token"
	defaultTwitchAPIURL   = "https://api.twitch.tv/helix"
)

var errTwitchTokenMissing = errors.New("twitch token response has no access token")

// TwitchClient talks to the Twitch Helix API with app credentials.
type TwitchClient struct {
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client

	// TokenURL and APIBaseURL default to the public Twitch endpoints.
	TokenURL   string
	APIBaseURL string
}

// Configured reports whether API credentials are present.
func (c *TwitchClient) Configured() bool {
	return c != nil && c.ClientID != "" && c.ClientSecret != ""
}

func (c *TwitchClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}

	return http.DefaultClient
}

func (c *TwitchClient) tokenURL() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}

	return defaultTwitchTokenURL
}

func (c *TwitchClient) apiBaseURL() string {
	if c.APIBaseURL != "" {
		return c.APIBaseURL
	}

	return defaultTwitchAPIURL
}

// Token obtains an app access token via the client-credentials grant.
func (c *TwitchClient) Token(ctx context.Context) (string, error) {
	form := url.Values{
		"client_id":     {c.ClientID},
		"client_secret": {c.ClientSecret},
		"grant_type":    {"client_credentials"},
	}

	req, err := http.NewRequestWithContext(ctx,
		http.MethodPost, c.tokenURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("request twitch token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("twitch token request returned status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode twitch token response: %w", err)
	}

	if payload.AccessToken == "" {
		return "", errTwitchTokenMissing
	}

	return payload.AccessToken, nil
}

// LiveURLs resolves which of the given channel entries are live right now,
// returning canonical twitch.tv URLs. Entries may be URLs, @handles or
// bare login names. Batches that fail are logged and skipped.
func (c *TwitchClient) LiveURLs(ctx context.Context, entries []string) ([]string, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}

	logins := platform.NormalizeURLs(entries, platform.NormalizeTwitchLogin)
	if len(logins) == 0 {
		return nil, nil
	}

	var liveURLs []string

	seen := make(map[string]struct{})

	for start := 0; start < len(logins); start += twitchStreamsBatchSize {
		end := min(start+twitchStreamsBatchSize, len(logins))

		batch, err := c.liveLogins(ctx, token, logins[start:end])
		if err != nil {
			logger.WarnKV(ctx, "twitch streams lookup failed", "error", err)
			continue
		}

		for _, login := range batch {
			liveURL := "https://www.twitch.tv/" + login
			if _, ok := seen[liveURL]; ok {
				continue
			}

			seen[liveURL] = struct{}{}
			liveURLs = append(liveURLs, liveURL)
		}
	}

	return liveURLs, nil
}

func (c *TwitchClient) liveLogins(ctx context.Context, token string, logins []string) ([]string, error) {
	query := url.Values{}
	for _, login := range logins {
		query.Add("user_login", login)
	}

	req, err := http.NewRequestWithContext(ctx,
		http.MethodGet, c.apiBaseURL()+"/streams?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build streams request: %w", err)
	}

	req.Header.Set("Client-Id", c.ClientID)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("request twitch streams: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("twitch streams request returned status %d", resp.StatusCode)
	}

	var payload struct {
		Data []struct {
			UserLogin string `json:"user_login"`
		} `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode twitch streams response: %w", err)
	}

	live := make([]string, 0, len(payload.Data))

	for _, item := range payload.Data {
		if login := strings.ToLower(item.UserLogin); login != "" {
			live = append(live, login)
		}
	}

	return live, nil
}

// DisplayName looks up the public display name of a Twitch login.
func (c *TwitchClient) DisplayName(ctx context.Context, login string) (string, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx,
		http.MethodGet, c.apiBaseURL()+"/users?login="+url.QueryEscape(login), nil)
	if err != nil {
		return "", fmt.Errorf("build users request: %w", err)
	}

	req.Header.Set("Client-Id", c.ClientID)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("request twitch user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("twitch users request returned status %d", resp.StatusCode)
	}

	var payload struct {
		Data []struct {
			DisplayName string `json:"display_name"`
		} `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode twitch users response: %w", err)
	}

	if len(payload.Data) == 0 || payload.Data[0].DisplayName == "" {
		return "", fmt.Errorf("twitch user %q not found", login)
	}

	return payload.Data[0].DisplayName, nil
}
