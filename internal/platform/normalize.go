package platform

import (
	"fmt"
	"net/url"
	"strings"
)

// YouTubeEntryKind classifies a normalized YouTube watch entry.
type YouTubeEntryKind string

// Recognized YouTube entry kinds.
const (
	YouTubeEntryVideo   YouTubeEntryKind = "video"
	YouTubeEntryChannel YouTubeEntryKind = "channel"
	YouTubeEntryHandle  YouTubeEntryKind = "handle"
	YouTubeEntryUser    YouTubeEntryKind = "user"
)

// NormalizeYouTubeEntry turns a channel URL, handle or raw ID
// into its kind and value. Empty input yields empty results.
func NormalizeYouTubeEntry(entry string) (YouTubeEntryKind, string) {
	cleaned := strings.TrimSpace(entry)
	if cleaned == "" {
		return "", ""
	}

	if parsed, err := url.Parse(cleaned); err == nil && parsed.Host != "" {
		host := strings.ToLower(parsed.Host)
		parts := pathParts(parsed)

		switch {
		case strings.Contains(host, "youtu.be") && len(parts) > 0:
			return YouTubeEntryVideo, parts[0]
		case strings.Contains(host, "youtube") && len(parts) > 0:
			if id := parsed.Query().Get("v"); id != "" {
				return YouTubeEntryVideo, id
			}

			switch {
			case parts[0] == "channel" && len(parts) >= 2:
				return YouTubeEntryChannel, parts[1]
			case strings.HasPrefix(parts[0], "@"):
				return YouTubeEntryHandle, strings.TrimPrefix(parts[0], "@")
			case parts[0] == "user" && len(parts) >= 2:
				return YouTubeEntryUser, parts[1]
			case parts[0] == "c" && len(parts) >= 2:
				return YouTubeEntryHandle, parts[1]
			}
		}
	}

	switch {
	case strings.HasPrefix(cleaned, "@"):
		return YouTubeEntryHandle, strings.TrimPrefix(cleaned, "@")
	case strings.HasPrefix(cleaned, "UC"):
		return YouTubeEntryChannel, cleaned
	default:
		return YouTubeEntryHandle, cleaned
	}
}

// NormalizeTwitchLogin extracts a lowercase Twitch login
// from a channel URL, an @handle or a bare login name.
func NormalizeTwitchLogin(entry string) string {
	cleaned := strings.TrimSpace(entry)
	if cleaned == "" {
		return ""
	}

	if parsed, err := url.Parse(cleaned); err == nil && parsed.Host != "" {
		host := strings.ToLower(parsed.Host)

		if parts := pathParts(parsed); strings.Contains(host, "twitch.tv") && len(parts) > 0 {
			return strings.ToLower(parts[0])
		}
	}

	return strings.ToLower(strings.TrimLeft(cleaned, "@"))
}

// NormalizeTwitCastingEntry canonicalizes a TwitCasting
// user URL or name into https://twitcasting.tv/<user>.
func NormalizeTwitCastingEntry(entry string) string {
	cleaned := ensureScheme(strings.TrimSpace(entry), "twitcasting.tv")
	if cleaned == "" {
		return ""
	}

	if parsed, err := url.Parse(cleaned); err == nil && parsed.Host != "" {
		host := strings.ToLower(parsed.Host)

		if parts := pathParts(parsed); strings.Contains(host, "twitcasting.tv") && len(parts) > 0 {
			return "https://twitcasting.tv/" + parts[0]
		}
	}

	cleaned = strings.TrimLeft(cleaned, "@")
	if cleaned == "" {
		return ""
	}

	return "https://twitcasting.tv/" + cleaned
}

// TwitCastingUserID extracts the user ID from
// any input NormalizeTwitCastingEntry accepts.
func TwitCastingUserID(entry string) string {
	normalized := NormalizeTwitCastingEntry(entry)
	if normalized == "" {
		return ""
	}

	parsed, err := url.Parse(normalized)
	if err != nil {
		return ""
	}

	parts := pathParts(parsed)
	if len(parts) == 0 {
		return ""
	}

	return parts[0]
}

// NormalizeNiconicoEntry accepts a nicovideo.jp URL or an lv-prefixed
// live ID and returns a watchable URL, or empty if unrecognized.
func NormalizeNiconicoEntry(entry string) string {
	cleaned := ensureScheme(strings.TrimSpace(entry), "nicovideo.jp")
	if cleaned == "" {
		return ""
	}

	if parsed, err := url.Parse(cleaned); err == nil && parsed.Host != "" {
		if strings.Contains(strings.ToLower(parsed.Host), "nicovideo.jp") && parsed.Path != "" {
			return cleaned
		}
	}

	if strings.HasPrefix(cleaned, "lv") {
		return "https://live.nicovideo.jp/watch/" + cleaned
	}

	return ""
}

// NormalizeTikTokEntry accepts a tiktok.com URL or an @handle
// and returns a live URL, or empty if unrecognized.
func NormalizeTikTokEntry(entry string) string {
	cleaned := ensureScheme(strings.TrimSpace(entry), "tiktok.com")
	if cleaned == "" {
		return ""
	}

	if parsed, err := url.Parse(cleaned); err == nil && parsed.Host != "" {
		if strings.Contains(strings.ToLower(parsed.Host), "tiktok.com") && parsed.Path != "" {
			return cleaned
		}
	}

	cleaned = strings.TrimLeft(cleaned, "@")
	if cleaned == "" {
		return ""
	}

	return fmt.Sprintf("https://www.tiktok.com/@%s/live", cleaned)
}

// NormalizeKickEntry canonicalizes a Kick channel
// URL or slug into https://kick.com/<slug>.
func NormalizeKickEntry(entry string) string {
	cleaned := ensureScheme(strings.TrimSpace(entry), "kick.com")
	if cleaned == "" {
		return ""
	}

	if parsed, err := url.Parse(cleaned); err == nil && parsed.Host != "" {
		host := strings.ToLower(parsed.Host)

		if parts := pathParts(parsed); strings.Contains(host, "kick.com") && len(parts) > 0 {
			return "https://kick.com/" + parts[0]
		}
	}

	cleaned = strings.TrimLeft(cleaned, "@")
	if cleaned == "" {
		return ""
	}

	return "https://kick.com/" + cleaned
}

// NormalizeAbemaEntry accepts only full abema.tv URLs with a path.
func NormalizeAbemaEntry(entry string) string {
	return normalizeHostedURL(entry, "abema.tv")
}

// Normalize17LiveEntry accepts only full 17.live URLs with a path.
func Normalize17LiveEntry(entry string) string {
	return normalizeHostedURL(entry, "17.live")
}

// NormalizeRadikoEntry accepts only full radiko.jp URLs with a path.
func NormalizeRadikoEntry(entry string) string {
	return normalizeHostedURL(entry, "radiko.jp")
}

// NormalizeBilibiliEntry accepts only full bilibili.com URLs with a path.
func NormalizeBilibiliEntry(entry string) string {
	return normalizeHostedURL(entry, "bilibili.com")
}

// NormalizeOpenrecEntry accepts an openrec.tv URL or a user name,
// turning bare names into https://www.openrec.tv/user/<name>.
func NormalizeOpenrecEntry(entry string) string {
	if normalized := normalizeHostedURL(entry, "openrec.tv"); normalized != "" {
		return normalized
	}

	cleaned := strings.TrimLeft(strings.TrimSpace(entry), "@")
	if cleaned == "" {
		return ""
	}

	return "https://www.openrec.tv/user/" + cleaned
}

// normalizeHostedURL returns the entry unchanged when it is a URL on the
// given host with a non-empty path, adding https:// when the scheme is
// missing. Anything else yields empty.
func normalizeHostedURL(entry, hostFragment string) string {
	cleaned := ensureScheme(strings.TrimSpace(entry), hostFragment)
	if cleaned == "" {
		return ""
	}

	parsed, err := url.Parse(cleaned)
	if err != nil || parsed.Host == "" {
		return ""
	}

	if strings.Contains(strings.ToLower(parsed.Host), hostFragment) && parsed.Path != "" {
		return cleaned
	}

	return ""
}

// NormalizeURLs applies a normalizer to each entry
// and collects the unique non-empty results in order.
func NormalizeURLs(entries []string, normalize func(string) string) []string {
	urls := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		normalized := normalize(entry)
		if normalized == "" {
			continue
		}

		if _, ok := seen[normalized]; ok {
			continue
		}

		seen[normalized] = struct{}{}
		urls = append(urls, normalized)
	}

	return urls
}
