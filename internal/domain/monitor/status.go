package monitor

import "time"

// Status is a snapshot of the automatic live-check loop.
type Status struct {
	// Enabled reports whether the loop has any channels or URLs to watch.
	Enabled bool `json:"enabled"`
	// Interval is the pause between live checks.
	Interval time.Duration `json:"interval"`
	// LastCheck is when the last check pass finished.
	LastCheck time.Time `json:"last_check,omitempty"`
	// WatchedChannels counts all configured channels and URLs.
	WatchedChannels int `json:"watched_channels"`
	// ActiveRecordings counts sessions the loop currently has running.
	ActiveRecordings int `json:"active_recordings"`
	// LastLiveURLs are the URLs found live during the last check pass.
	LastLiveURLs []string `json:"last_live_urls,omitempty"`
}

// Clone returns a copy of the status to avoid leaking internal references.
func (s *Status) Clone() *Status {
	if s == nil {
		return nil
	}

	cloned := *s
	cloned.LastLiveURLs = append([]string(nil), s.LastLiveURLs...)

	return &cloned
}
