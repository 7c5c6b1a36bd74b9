package platform

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	forbiddenChars = regexp.MustCompile(`[\\/:*?"<>|]`)
	controlChars   = regexp.MustCompile(`[\x00-\x1f]`)
	multiSpace     = regexp.MustCompile(`\s+`)
)

// SafeFilenameComponent strips characters that are not
// valid in file names. Empty input becomes "stream".
func SafeFilenameComponent(text string) string {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return "stream"
	}

	cleaned = forbiddenChars.ReplaceAllString(cleaned, "_")
	cleaned = controlChars.ReplaceAllString(cleaned, "_")
	cleaned = strings.TrimSpace(multiSpace.ReplaceAllString(cleaned, " "))
	cleaned = strings.TrimRight(cleaned, ". ")

	if cleaned == "" {
		return "stream"
	}

	return cleaned
}

// ChannelLabel derives a filesystem-safe label identifying the channel
// or video behind a stream URL, for use in file and folder names.
func ChannelLabel(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return SafeFilenameComponent(rawURL)
	}

	host := parsed.Host
	path := parsed.Path

	if host == "" && path != "" {
		// Scheme-less input: first path element stands in for the host.
		parts := strings.Split(strings.Trim(path, "/"), "/")
		if len(parts) > 0 {
			host = parts[0]
			path = strings.Join(parts[1:], "/")
		}
	}

	host = strings.ReplaceAll(host, "www.", "")

	var candidate string

	switch {
	case parsed.Query().Get("v") != "":
		candidate = parsed.Query().Get("v")
	case strings.Trim(path, "/") != "":
		parts := strings.Split(strings.Trim(path, "/"), "/")
		candidate = parts[len(parts)-1]
	default:
		candidate = host
	}

	var label string
	if host != "" && candidate != "" && !strings.Contains(host, candidate) {
		label = host + "_" + candidate
	} else if candidate != "" {
		label = candidate
	} else if host != "" {
		label = host
	} else {
		label = "stream"
	}

	return SafeFilenameComponent(label)
}

// FolderLabel extracts a short per-channel folder name from a stream URL
// for the platforms with a well-known URL shape. It returns empty when
// no platform-specific rule applies; callers fall back to ChannelLabel.
func FolderLabel(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}

	host := strings.ToLower(parsed.Host)

	parts := pathParts(parsed)
	if len(parts) == 0 {
		return ""
	}

	switch {
	case strings.Contains(host, "twitcasting.tv"):
		return parts[0]
	case strings.Contains(host, "nicovideo.jp"):
		return elementAfter(parts, "watch")
	case strings.Contains(host, "tiktok.com"):
		for _, part := range parts {
			if strings.HasPrefix(part, "@") && len(part) > 1 {
				return strings.TrimPrefix(part, "@")
			}
		}

		return ""
	case strings.Contains(host, "kick.com"):
		return parts[0]
	case strings.Contains(host, "radiko.jp"), strings.Contains(host, "openrec.tv"):
		return parts[len(parts)-1]
	case strings.Contains(host, "showroom-live.com"):
		if parts[0] == "r" && len(parts) > 1 {
			return parts[1]
		}

		return parts[len(parts)-1]
	case strings.Contains(host, "17.live"):
		return elementAfter(parts, "live")
	case strings.Contains(host, "abema.tv"):
		if label := followingElement(parts, "channels"); label != "" {
			return label
		}

		if label := followingElement(parts, "now-on-air"); label != "" {
			return label
		}

		return parts[len(parts)-1]
	case strings.Contains(host, "bilibili.com"):
		return parts[len(parts)-1]
	}

	return ""
}

// elementAfter returns the path element following the marker,
// or the last element when the marker is absent at the end.
func elementAfter(parts []string, marker string) string {
	if label := followingElement(parts, marker); label != "" {
		return label
	}

	return parts[len(parts)-1]
}

// followingElement returns the element after the marker, or empty.
func followingElement(parts []string, marker string) string {
	for i, part := range parts {
		if part == marker && i+1 < len(parts) {
			return parts[i+1]
		}
	}

	return ""
}
