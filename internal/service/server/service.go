package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/hairoku/hairoku/internal/config"
	"github.com/hairoku/hairoku/internal/convert"
	domainmon "github.com/hairoku/hairoku/internal/domain/monitor"
	domain "github.com/hairoku/hairoku/internal/domain/session"
	"github.com/hairoku/hairoku/internal/logger"
	"github.com/hairoku/hairoku/internal/probe"
	"github.com/hairoku/hairoku/internal/recorder"
	repo "github.com/hairoku/hairoku/internal/repository/session"
	"github.com/hairoku/hairoku/internal/service/monitor"
	"github.com/hairoku/hairoku/internal/toolchain"
)

// service encapsulates the recording business logic behind the transport layer.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// manager owns every recording session.
	manager *recorder.Manager
	// monitor is the automatic live-check loop, nil when nothing is configured.
	monitor *monitor.Monitor
	// repo backs GetSession lookups for records the manager never saw.
	repo repo.Repository
}

// newService wires the capture engine, converter and manager from settings
// and recovers persisted session history.
func newService(ctx context.Context, settings *config.Config, repository repo.Repository) (*service, error) {
	tools := &toolchain.Resolver{InstallDir: settings.Tools.InstallDir}
	prober := &probe.Prober{Tools: tools}
	youtube := new(probe.YouTubeResolver)

	engine := &recorder.Engine{
		Tools:          tools,
		Prober:         prober,
		YouTube:        youtube,
		YouTubeBackend: settings.Recording.YouTubeBackend,
	}

	converter := &convert.Converter{
		Tools:      tools,
		KeepSource: settings.Recording.KeepSource,
	}

	history, err := recoverSessions(ctx, repository)
	if err != nil {
		return nil, err
	}

	manager := recorder.NewManager(settings.Recording, settings.OutputDir, engine, converter, repository)
	manager.SeedHistory(history)

	s := &service{manager: manager, repo: repository}

	twitch := &probe.TwitchClient{
		ClientID:     settings.Monitor.TwitchClientID,
		ClientSecret: settings.Monitor.TwitchClientSecret,
	}
	youtubeAPI := &probe.YouTubeAPIClient{Key: settings.Monitor.YouTubeAPIKey}

	s.monitor = monitor.New(settings.Monitor, manager, twitch, youtube, youtubeAPI, prober)

	return s, nil
}

// recoverSessions marks sessions left non-terminal by a previous process
// as failed so the history does not show phantom recordings, and returns
// the loaded history for seeding the manager.
func recoverSessions(ctx context.Context, repository repo.Repository) ([]*domain.Session, error) {
	if repository == nil {
		return nil, nil
	}

	sessions, err := repository.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session history: %w", err)
	}

	var recovered int

	for _, sess := range sessions {
		if sess.State.IsTerminal() {
			continue
		}

		sess.State = domain.StateFailed
		sess.Error = "interrupted by shutdown"

		recovered++
	}

	if recovered == 0 {
		return sessions, nil
	}

	if err := repository.SaveAll(ctx, sessions); err != nil {
		return nil, fmt.Errorf("save recovered sessions: %w", err)
	}

	logger.InfoKV(ctx, "recovered interrupted sessions", "count", recovered)

	return sessions, nil
}

// StartRecording begins capturing a stream URL.
func (s *service) StartRecording(ctx context.Context, opts recorder.StartOptions) (*domain.Session, error) {
	return s.manager.Start(ctx, opts)
}

// StopRecording requests a running session to stop.
func (s *service) StopRecording(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.manager.Stop(ctx, sessionID)
}

// GetSession returns one session by ID, consulting the state file for
// records written outside this manager's lifetime.
func (s *service) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.manager.Get(ctx, sessionID)
	if err == nil {
		return sess, nil
	}

	if !errors.Is(err, recorder.ErrSessionNotFound) || s.repo == nil {
		return nil, err
	}

	stored, repoErr := s.repo.Get(ctx, sessionID)
	if repoErr != nil {
		return nil, err
	}

	return stored, nil
}

// ListSessions returns every session, newest first.
func (s *service) ListSessions(ctx context.Context) []*domain.Session {
	return s.manager.List(ctx)
}

// MonitorStatus reports the automatic live-check state.
func (s *service) MonitorStatus(ctx context.Context) *domainmon.Status {
	if s.monitor == nil {
		return &domainmon.Status{}
	}

	return s.monitor.Status(ctx)
}
