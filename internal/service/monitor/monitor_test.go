package monitor

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hairoku/hairoku/internal/config"
	domain "github.com/hairoku/hairoku/internal/domain/session"
	"github.com/hairoku/hairoku/internal/recorder"
)

// fakeStarter records which URLs the monitor asked to record.
type fakeStarter struct {
	mu      sync.Mutex
	started []string
	active  []string
	err     error
}

func (f *fakeStarter) Start(_ context.Context, opts recorder.StartOptions) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	f.started = append(f.started, opts.URL)

	return &domain.Session{ID: "sess", URL: opts.URL}, nil
}

func (f *fakeStarter) ActiveURLs(context.Context) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.active...)
}

func (f *fakeStarter) ActiveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.active)
}

func (f *fakeStarter) startedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.started...)
}

type fakeTwitch struct {
	configured bool
	live       []string
	err        error

	names       map[string]string
	nameLookups []string
}

func (f *fakeTwitch) Configured() bool { return f.configured }

func (f *fakeTwitch) LiveURLs(context.Context, []string) ([]string, error) {
	return f.live, f.err
}

func (f *fakeTwitch) DisplayName(_ context.Context, login string) (string, error) {
	f.nameLookups = append(f.nameLookups, login)

	return f.names[login], nil
}

// fakeYouTube returns the same live URLs regardless of entries and records
// which entries reached the resolver.
type fakeYouTube struct {
	live    []string
	entries []string
}

func (f *fakeYouTube) LiveURLs(_ context.Context, entries []string) []string {
	f.entries = append(f.entries, entries...)
	return f.live
}

type fakeYouTubeAPI struct {
	configured bool
	videoIDs   map[string][]string
}

func (f *fakeYouTubeAPI) Configured() bool { return f.configured }

func (f *fakeYouTubeAPI) LiveVideoIDs(_ context.Context, channelID string) ([]string, error) {
	return f.videoIDs[channelID], nil
}

// fakeProber reports the URLs in its set as live.
type fakeProber struct {
	live map[string]bool
}

func (f *fakeProber) IsLive(_ context.Context, url string) bool { return f.live[url] }

func TestMonitor_Enabled(t *testing.T) {
	t.Parallel()

	m := New(config.MonitorConfig{}, new(fakeStarter), nil, nil, nil, nil)
	require.False(t, m.Enabled())

	m = New(config.MonitorConfig{WatchURLs: []string{"https://example.com/live"}},
		new(fakeStarter), nil, nil, nil, nil)
	require.True(t, m.Enabled())
}

// TestMonitor_Check_StartsLiveChannels ensures live record channels are
// started once and already-running URLs are skipped.
func TestMonitor_Check_StartsLiveChannels(t *testing.T) {
	t.Parallel()

	starter := &fakeStarter{active: []string{"https://www.twitch.tv/running"}}
	twitch := &fakeTwitch{
		configured: true,
		live: []string{
			"https://www.twitch.tv/somechannel",
			"https://www.twitch.tv/running",
		},
	}

	m := New(config.MonitorConfig{TwitchChannels: []string{"somechannel", "running"}},
		starter, twitch, nil, nil, nil)

	m.Check(context.Background())

	require.Equal(t, []string{"https://www.twitch.tv/somechannel"}, starter.startedURLs())

	status := m.Status(context.Background())
	require.False(t, status.LastCheck.IsZero())
	require.Contains(t, status.LastLiveURLs, "https://www.twitch.tv/somechannel")
}

// TestMonitor_Check_TwitchFallback verifies that without Helix credentials
// the logins are probed as plain channel URLs.
func TestMonitor_Check_TwitchFallback(t *testing.T) {
	t.Parallel()

	starter := new(fakeStarter)
	prober := &fakeProber{live: map[string]bool{
		"https://www.twitch.tv/somechannel": true,
	}}

	m := New(config.MonitorConfig{TwitchChannels: []string{"SomeChannel", "offline_one"}},
		starter, &fakeTwitch{configured: false}, nil, nil, prober)

	m.Check(context.Background())

	require.Equal(t, []string{"https://www.twitch.tv/somechannel"}, starter.startedURLs())
}

// TestMonitor_Check_NotifyOnly ensures notify channels never start recordings.
func TestMonitor_Check_NotifyOnly(t *testing.T) {
	t.Parallel()

	starter := new(fakeStarter)
	prober := &fakeProber{live: map[string]bool{
		"https://example.com/notify": true,
	}}

	m := New(config.MonitorConfig{NotifyURLs: []string{"https://example.com/notify"}},
		starter, nil, nil, nil, prober)

	m.Check(context.Background())

	require.Empty(t, starter.startedURLs())

	status := m.Status(context.Background())
	require.Equal(t, []string{"https://example.com/notify"}, status.LastLiveURLs)
}

// TestMonitor_Check_NotifyDisplayName ensures live Twitch notify channels
// get their public display name looked up for the notification.
func TestMonitor_Check_NotifyDisplayName(t *testing.T) {
	t.Parallel()

	starter := new(fakeStarter)
	twitch := &fakeTwitch{
		configured: true,
		live:       []string{"https://www.twitch.tv/somechannel"},
		names:      map[string]string{"somechannel": "SomeChannel"},
	}

	m := New(config.MonitorConfig{TwitchNotifyChannels: []string{"somechannel"}},
		starter, twitch, nil, nil, nil)

	m.Check(context.Background())

	require.Empty(t, starter.startedURLs())
	require.Equal(t, []string{"somechannel"}, twitch.nameLookups)

	// Non-Twitch URLs skip the lookup.
	require.Empty(t, m.channelName(context.Background(), "https://example.com/live"))
}

// TestMonitor_youtubeLive_DataAPI checks that channel IDs go through the Data
// API, handles fall back to the resolver and parallel streams are skipped.
func TestMonitor_youtubeLive_DataAPI(t *testing.T) {
	t.Parallel()

	resolver := &fakeYouTube{live: []string{"https://www.youtube.com/watch?v=resolved01"}}
	api := &fakeYouTubeAPI{
		configured: true,
		videoIDs: map[string][]string{
			"UCsingle00000000000000000": {"livevideo01"},
			"UCdouble00000000000000000": {"livevideo02", "livevideo03"},
		},
	}

	m := New(config.MonitorConfig{}, new(fakeStarter), nil, resolver, api, nil)

	live := m.youtubeLive(context.Background(), []string{
		"UCsingle00000000000000000",
		"UCdouble00000000000000000",
		"@somehandle",
	})

	require.Equal(t, []string{
		"https://www.youtube.com/watch?v=livevideo01",
		"https://www.youtube.com/watch?v=resolved01",
	}, live)
	require.Equal(t, []string{"@somehandle"}, resolver.entries)
}

func TestTwitchChannelURLs(t *testing.T) {
	t.Parallel()

	urls := twitchChannelURLs([]string{"SomeChannel", "https://www.twitch.tv/Another"})
	require.Equal(t, []string{
		"https://www.twitch.tv/somechannel",
		"https://www.twitch.tv/another",
	}, urls)
}
