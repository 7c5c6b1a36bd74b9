package platform

import "strings"

// ParseURLList splits line-separated URL text into a
// deduplicated slice, skipping blank lines.
func ParseURLList(raw string) []string {
	var urls []string

	seen := make(map[string]struct{})

	for _, line := range strings.Split(raw, "\n") {
		candidate := strings.TrimSpace(line)
		if candidate == "" {
			continue
		}

		if _, ok := seen[candidate]; ok {
			continue
		}

		seen[candidate] = struct{}{}
		urls = append(urls, candidate)
	}

	return urls
}

// MergeUniqueURLs concatenates URL lists, keeping
// the first occurrence of each URL.
func MergeUniqueURLs(lists ...[]string) []string {
	var merged []string

	seen := make(map[string]struct{})

	for _, list := range lists {
		for _, u := range list {
			if _, ok := seen[u]; ok {
				continue
			}

			seen[u] = struct{}{}
			merged = append(merged, u)
		}
	}

	return merged
}
