package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hairoku/hairoku/internal/config"
	domainmon "github.com/hairoku/hairoku/internal/domain/monitor"
	domain "github.com/hairoku/hairoku/internal/domain/session"
	"github.com/hairoku/hairoku/internal/logger"
	"github.com/hairoku/hairoku/internal/platform"
	"github.com/hairoku/hairoku/internal/recorder"
)

// SessionStarter abstracts the recording manager operations the monitor needs.
type SessionStarter interface {
	Start(ctx context.Context, opts recorder.StartOptions) (*domain.Session, error)
	ActiveURLs(ctx context.Context) []string
	ActiveCount() int
}

// TwitchChecker reports live Twitch channels through the Helix API.
type TwitchChecker interface {
	Configured() bool
	LiveURLs(ctx context.Context, entries []string) ([]string, error)
	DisplayName(ctx context.Context, login string) (string, error)
}

// YouTubeChecker resolves live watch URLs from YouTube channel entries.
type YouTubeChecker interface {
	LiveURLs(ctx context.Context, entries []string) []string
}

// YouTubeAPIChecker looks up live broadcasts through the Data API.
type YouTubeAPIChecker interface {
	Configured() bool
	LiveVideoIDs(ctx context.Context, channelID string) ([]string, error)
}

// LiveProber checks arbitrary stream URLs with the capture tools.
type LiveProber interface {
	IsLive(ctx context.Context, url string) bool
}

// monitorActor marks sessions the monitor started on its own.
var monitorActor = &domain.Actor{Hostname: "monitor", Username: "monitor"}

// Monitor periodically checks the configured channels and URLs and starts
// recordings for the ones found live. Checks never overlap: a slow pass
// simply delays the next tick.
type Monitor struct {
	cfg     config.MonitorConfig
	manager SessionStarter

	twitch     TwitchChecker
	youtube    YouTubeChecker
	youtubeAPI YouTubeAPIChecker
	prober     LiveProber

	mu     sync.Mutex
	status domainmon.Status
}

// New creates a monitor over the given checkers. Nil checkers disable
// the corresponding platform.
func New(
	cfg config.MonitorConfig,
	manager SessionStarter,
	twitch TwitchChecker,
	youtube YouTubeChecker,
	youtubeAPI YouTubeAPIChecker,
	prober LiveProber,
) *Monitor {
	m := &Monitor{
		cfg:        cfg,
		manager:    manager,
		twitch:     twitch,
		youtube:    youtube,
		youtubeAPI: youtubeAPI,
		prober:     prober,
	}

	m.status.Enabled = m.Enabled()
	m.status.Interval = cfg.Interval
	m.status.WatchedChannels = m.watchedChannels()

	return m
}

// Enabled reports whether the configuration gives the monitor anything to watch.
func (m *Monitor) Enabled() bool {
	return m.watchedChannels() > 0
}

func (m *Monitor) watchedChannels() int {
	return len(m.cfg.TwitchChannels) + len(m.cfg.TwitchNotifyChannels) +
		len(m.cfg.YouTubeChannels) + len(m.cfg.YouTubeNotifyChannels) +
		len(m.cfg.WatchURLs) + len(m.cfg.NotifyURLs)
}

// Run checks all channels immediately and then on every tick until the
// context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	if !m.Enabled() {
		logger.InfoKV(ctx, "monitor disabled, no channels configured")
		return
	}

	interval := m.cfg.Interval
	if interval <= 0 {
		interval = config.DefaultMonitorInterval
	}

	logger.InfoKV(ctx, "monitor started",
		"interval", interval,
		"watched_channels", m.watchedChannels())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.Check(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.InfoKV(ctx, "monitor stopped")
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check runs one live-check pass over every configured channel and URL.
func (m *Monitor) Check(ctx context.Context) {
	recordURLs, notifyURLs := m.collectLive(ctx)

	active := make(map[string]struct{})
	for _, url := range m.manager.ActiveURLs(ctx) {
		active[url] = struct{}{}
	}

	for _, url := range recordURLs {
		if _, ok := active[url]; ok {
			continue
		}

		if _, err := m.manager.Start(ctx, recorder.StartOptions{URL: url, Actor: monitorActor}); err != nil {
			if errors.Is(err, recorder.ErrAlreadyRecording) {
				continue
			}

			logger.WarnKV(ctx, "monitor failed to start recording", "url", url, "error", err)

			continue
		}

		logger.InfoKV(ctx, "monitor started recording", "url", url)
	}

	for _, url := range notifyURLs {
		if name := m.channelName(ctx, url); name != "" {
			logger.InfoKV(ctx, "channel is live", "channel", name, "url", url)
			continue
		}

		logger.InfoKV(ctx, "channel is live", "url", url)
	}

	m.mu.Lock()
	m.status.LastCheck = time.Now()
	m.status.LastLiveURLs = platform.MergeUniqueURLs(recordURLs, notifyURLs)
	m.status.ActiveRecordings = m.manager.ActiveCount()
	m.mu.Unlock()
}

// channelName resolves a public display name for the notification log.
// Only Twitch supports the lookup, and only with Helix credentials.
func (m *Monitor) channelName(ctx context.Context, rawURL string) string {
	if m.twitch == nil || !m.twitch.Configured() {
		return ""
	}

	if platform.Detect(rawURL) != platform.Twitch {
		return ""
	}

	login := platform.NormalizeTwitchLogin(rawURL)
	if login == "" {
		return ""
	}

	name, err := m.twitch.DisplayName(ctx, login)
	if err != nil {
		logger.DebugKV(ctx, "display name lookup failed", "login", login, "error", err)
		return ""
	}

	return name
}

// collectLive gathers live stream URLs for the record set and the notify set.
func (m *Monitor) collectLive(ctx context.Context) (recordURLs, notifyURLs []string) {
	probeRecord := append([]string(nil), m.cfg.WatchURLs...)
	probeNotify := append([]string(nil), m.cfg.NotifyURLs...)

	if m.twitch != nil && m.twitch.Configured() {
		recordURLs = append(recordURLs, m.twitchLive(ctx, m.cfg.TwitchChannels)...)
		notifyURLs = append(notifyURLs, m.twitchLive(ctx, m.cfg.TwitchNotifyChannels)...)
	} else {
		// Without Helix credentials Twitch logins are probed like any other URL.
		probeRecord = append(probeRecord, twitchChannelURLs(m.cfg.TwitchChannels)...)
		probeNotify = append(probeNotify, twitchChannelURLs(m.cfg.TwitchNotifyChannels)...)
	}

	if m.youtube != nil {
		recordURLs = append(recordURLs, m.youtubeLive(ctx, m.cfg.YouTubeChannels)...)
		notifyURLs = append(notifyURLs, m.youtubeLive(ctx, m.cfg.YouTubeNotifyChannels)...)
	}

	if m.prober != nil {
		for _, url := range platform.MergeUniqueURLs(probeRecord) {
			if m.prober.IsLive(ctx, url) {
				recordURLs = append(recordURLs, url)
			}
		}

		for _, url := range platform.MergeUniqueURLs(probeNotify) {
			if m.prober.IsLive(ctx, url) {
				notifyURLs = append(notifyURLs, url)
			}
		}
	}

	return platform.MergeUniqueURLs(recordURLs), platform.MergeUniqueURLs(notifyURLs)
}

func (m *Monitor) twitchLive(ctx context.Context, entries []string) []string {
	if len(entries) == 0 {
		return nil
	}

	liveURLs, err := m.twitch.LiveURLs(ctx, entries)
	if err != nil {
		logger.WarnKV(ctx, "twitch live check failed", "error", err)
		return nil
	}

	return liveURLs
}

// youtubeLive prefers the Data API for channel IDs when a key is configured
// and falls back to live-page resolution for everything else.
func (m *Monitor) youtubeLive(ctx context.Context, entries []string) []string {
	if len(entries) == 0 {
		return nil
	}

	if m.youtubeAPI == nil || !m.youtubeAPI.Configured() {
		return m.youtube.LiveURLs(ctx, entries)
	}

	var (
		liveURLs    []string
		viaResolver []string
	)

	for _, entry := range entries {
		kind, value := platform.NormalizeYouTubeEntry(entry)
		if kind != platform.YouTubeEntryChannel {
			viaResolver = append(viaResolver, entry)
			continue
		}

		ids, err := m.youtubeAPI.LiveVideoIDs(ctx, value)
		if err != nil {
			logger.WarnKV(ctx, "youtube api check failed", "channel", value, "error", err)

			viaResolver = append(viaResolver, entry)

			continue
		}

		if len(ids) > 1 {
			logger.InfoKV(ctx, "multiple parallel streams detected, skipping",
				"entry", entry, "video_ids", ids)

			continue
		}

		if len(ids) == 1 {
			liveURLs = append(liveURLs, "https://www.youtube.com/watch?v="+ids[0])
		}
	}

	if len(viaResolver) > 0 {
		liveURLs = append(liveURLs, m.youtube.LiveURLs(ctx, viaResolver)...)
	}

	return liveURLs
}

// twitchChannelURLs turns login entries into channel page URLs.
func twitchChannelURLs(entries []string) []string {
	urls := make([]string, 0, len(entries))

	for _, entry := range entries {
		if login := platform.NormalizeTwitchLogin(entry); login != "" {
			urls = append(urls, "https://www.twitch.tv/"+login)
		}
	}

	return urls
}

// Status returns a snapshot of the monitor state.
func (m *Monitor) Status(_ context.Context) *domainmon.Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.status.Clone()
}
