package platform

import (
	"net/url"
	"strings"
)

// Platform names a supported streaming service.
type Platform string

// Supported platforms. Other is any URL streamlink/yt-dlp might still handle.
const (
	Twitch        Platform = "twitch"
	YouTube       Platform = "youtube"
	TwitCasting   Platform = "twitcasting"
	Niconico      Platform = "niconico"
	TikTok        Platform = "tiktok"
	Kick          Platform = "kick"
	Abema         Platform = "abema"
	SeventeenLive Platform = "17live"
	Radiko        Platform = "radiko"
	Openrec       Platform = "openrec"
	Bilibili      Platform = "bilibili"
	Whowatch      Platform = "whowatch"
	Bigo          Platform = "bigo"
	Showroom      Platform = "showroom"
	Other         Platform = "other"
)

// hostPlatforms maps URL host substrings to platforms, checked in order.
var hostPlatforms = []struct {
	fragment string
	platform Platform
}{
	{"twitch.tv", Twitch},
	{"youtube.com", YouTube},
	{"youtu.be", YouTube},
	{"twitcasting.tv", TwitCasting},
	{"nicovideo.jp", Niconico},
	{"tiktok.com", TikTok},
	{"kick.com", Kick},
	{"abema.tv", Abema},
	{"17.live", SeventeenLive},
	{"radiko.jp", Radiko},
	{"openrec.tv", Openrec},
	{"bilibili.com", Bilibili},
	{"whowatch.tv", Whowatch},
	{"bigo.tv", Bigo},
	{"bigo.live", Bigo},
	{"showroom-live.com", Showroom},
}

// Detect returns the platform a stream URL belongs to.
func Detect(rawURL string) Platform {
	host := hostOf(rawURL)
	if host == "" {
		host = strings.ToLower(rawURL)
	}

	for _, entry := range hostPlatforms {
		if strings.Contains(host, entry.fragment) {
			return entry.platform
		}
	}

	return Other
}

// hostOf extracts the lowercase host of a URL, tolerating missing schemes.
func hostOf(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}

	host := parsed.Host
	if host == "" && parsed.Path != "" {
		// Scheme-less input: treat the first path element as the host.
		parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
		if len(parts) > 0 {
			host = parts[0]
		}
	}

	return strings.ToLower(strings.TrimPrefix(host, "www."))
}

// pathParts returns the non-empty path elements of a URL.
func pathParts(parsed *url.URL) []string {
	raw := strings.Split(parsed.Path, "/")
	parts := make([]string, 0, len(raw))

	for _, part := range raw {
		if part != "" {
			parts = append(parts, part)
		}
	}

	return parts
}

// ensureScheme prepends https:// when the input mentions the host without a scheme.
func ensureScheme(entry, hostFragment string) string {
	if !strings.Contains(entry, "://") && strings.Contains(entry, hostFragment) {
		return "https://" + entry
	}

	return entry
}
