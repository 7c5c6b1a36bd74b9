package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hairoku/hairoku/internal/config"
	domain "github.com/hairoku/hairoku/internal/domain/session"
)

var errTestLoad = errors.New("test load error")

// memoryRepository is a minimal in-memory Repository implementation for tests.
type memoryRepository struct {
	// sessions is the history returned from Load operations.
	sessions []*domain.Session
	// loadErr is the error to return from Load operations.
	loadErr error
	// savedAll stores the last history passed to SaveAll operations.
	savedAll []*domain.Session
}

func (m *memoryRepository) Load(context.Context) ([]*domain.Session, error) {
	return m.sessions, m.loadErr
}

func (m *memoryRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	for _, sess := range m.sessions {
		if sess.ID == id {
			return sess, nil
		}
	}

	return nil, errTestLoad
}

func (m *memoryRepository) Save(_ context.Context, sess *domain.Session) error {
	m.sessions = append(m.sessions, sess)

	return nil
}

func (m *memoryRepository) SaveAll(_ context.Context, sessions []*domain.Session) error {
	m.savedAll = sessions

	return nil
}

func testSettings() *config.Config {
	cfg := &config.Config{ServerAddress: "localhost:50051"}
	if err := config.Validate(cfg); err != nil {
		panic(err)
	}

	return cfg
}

// TestRecoverSessions asserts non-terminal history entries get marked failed
// while finished ones stay untouched.
func TestRecoverSessions(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{
		sessions: []*domain.Session{
			{ID: "aaaa0001", State: domain.StateRecording, StartedAt: time.Unix(100, 0)},
			{ID: "aaaa0002", State: domain.StateCompleted, StartedAt: time.Unix(200, 0)},
			{ID: "aaaa0003", State: domain.StateConverting, StartedAt: time.Unix(300, 0)},
		},
	}

	history, err := recoverSessions(context.Background(), repo)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.NotNil(t, repo.savedAll)

	require.Equal(t, domain.StateFailed, repo.savedAll[0].State)
	require.Equal(t, "interrupted by shutdown", repo.savedAll[0].Error)
	require.Equal(t, domain.StateCompleted, repo.savedAll[1].State)
	require.Empty(t, repo.savedAll[1].Error)
	require.Equal(t, domain.StateFailed, repo.savedAll[2].State)
}

// TestRecoverSessions_NoWrites ensures a clean history is not rewritten.
func TestRecoverSessions_NoWrites(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{
		sessions: []*domain.Session{
			{ID: "aaaa0001", State: domain.StateCompleted},
		},
	}

	history, err := recoverSessions(context.Background(), repo)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Nil(t, repo.savedAll)

	repo = &memoryRepository{loadErr: errTestLoad}
	_, err = recoverSessions(context.Background(), repo)
	require.Error(t, err)
}

// TestNewService_Wiring creates a service from settings and checks the
// read operations work without any recording tools present.
func TestNewService_Wiring(t *testing.T) {
	t.Parallel()

	s, err := newService(context.Background(), testSettings(), new(memoryRepository))
	require.NoError(t, err)

	require.Empty(t, s.ListSessions(context.Background()))

	status := s.MonitorStatus(context.Background())
	require.NotNil(t, status)
	require.False(t, status.Enabled)
}

// TestNewService_SeedsHistory ensures persisted sessions survive a daemon
// restart: List and Get must serve them without any new recordings.
func TestNewService_SeedsHistory(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{
		sessions: []*domain.Session{
			{ID: "deadbeef", URL: "https://kick.com/someone", State: domain.StateCompleted, StartedAt: time.Unix(100, 0)},
			{ID: "aaaa0001", State: domain.StateRecording, StartedAt: time.Unix(200, 0)},
		},
	}

	s, err := newService(context.Background(), testSettings(), repo)
	require.NoError(t, err)

	sessions := s.ListSessions(context.Background())
	require.Len(t, sessions, 2)

	sess, err := s.GetSession(context.Background(), "deadbeef")
	require.NoError(t, err)
	require.Equal(t, domain.StateCompleted, sess.State)

	// The interrupted one comes back failed, not recording.
	sess, err = s.GetSession(context.Background(), "aaaa0001")
	require.NoError(t, err)
	require.Equal(t, domain.StateFailed, sess.State)
	require.Equal(t, "interrupted by shutdown", sess.Error)
}

// TestGetSession_RepositoryFallback covers lookups for records the manager
// never saw in this process.
func TestGetSession_RepositoryFallback(t *testing.T) {
	t.Parallel()

	s, err := newService(context.Background(), testSettings(), new(memoryRepository))
	require.NoError(t, err)

	// The session appears in the state file after startup.
	repo, ok := s.repo.(*memoryRepository)
	require.True(t, ok)
	repo.sessions = append(repo.sessions,
		&domain.Session{ID: "cafe0001", State: domain.StateCompleted})

	sess, err := s.GetSession(context.Background(), "cafe0001")
	require.NoError(t, err)
	require.Equal(t, "cafe0001", sess.ID)

	_, err = s.GetSession(context.Background(), "missing1")
	require.Error(t, err)
}

// TestResolveListenAddress covers override, port extraction and error cases.
func TestResolveListenAddress(t *testing.T) {
	t.Parallel()

	addr, err := resolveListenAddress("server.example.com:50051", "")
	require.NoError(t, err)
	require.Equal(t, ":50051", addr)

	addr, err = resolveListenAddress("server.example.com:50051", "127.0.0.1:9090")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9090", addr)

	_, err = resolveListenAddress("", "")
	require.ErrorIs(t, err, ErrNoServerAddress)

	_, err = resolveListenAddress("no-port-here", "")
	require.Error(t, err)
}
