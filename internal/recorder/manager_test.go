package recorder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hairoku/hairoku/internal/config"
	"github.com/hairoku/hairoku/internal/convert"
	domain "github.com/hairoku/hairoku/internal/domain/session"
	"github.com/stretchr/testify/require"
)

// fakeCapturer blocks until stopped or released, then reports
// the configured result.
type fakeCapturer struct {
	mu       sync.Mutex
	release  chan struct{}
	result   *Result
	err      error
	requests []*Request
}

func newFakeCapturer(result *Result, err error) *fakeCapturer {
	return &fakeCapturer{release: make(chan struct{}), result: result, err: err}
}

func (f *fakeCapturer) Record(ctx context.Context, req *Request) (*Result, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.release:
	}

	if f.err != nil {
		return nil, f.err
	}

	return f.result, nil
}

// fakeConverter renames files without touching disk and records
// the compression options it was handed.
type fakeConverter struct {
	mu         sync.Mutex
	compressed []convert.CompressOptions
}

func (f *fakeConverter) Convert(_ context.Context, inputPath string, _ convert.Format) (string, error) {
	return inputPath + ".mp4", nil
}

func (f *fakeConverter) Compress(_ context.Context, inputPath string, opts convert.CompressOptions) (string, error) {
	f.mu.Lock()
	f.compressed = append(f.compressed, opts)
	f.mu.Unlock()

	return inputPath + ".small.mp4", nil
}

// memoryRepository collects saved session snapshots.
type memoryRepository struct {
	mu    sync.Mutex
	saved map[string]*domain.Session
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{saved: make(map[string]*domain.Session)}
}

func (r *memoryRepository) Load(context.Context) ([]*domain.Session, error) { return nil, nil }

func (r *memoryRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.saved[id]; ok {
		return s, nil
	}

	return nil, errors.New("not found")
}

func (r *memoryRepository) Save(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.saved[s.ID] = s.Clone()

	return nil
}

func (r *memoryRepository) SaveAll(_ context.Context, sessions []*domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range sessions {
		r.saved[s.ID] = s.Clone()
	}

	return nil
}

func newTestManager(t *testing.T, capturer Capturer) (*Manager, *memoryRepository) {
	t.Helper()

	repo := newMemoryRepository()
	manager := NewManager(config.RecordingConfig{
		Quality:      "best",
		OutputFormat: "ts",
		RetryCount:   1,
		RetryWait:    time.Millisecond,
	}, t.TempDir(), capturer, new(fakeConverter), repo)

	return manager, repo
}

func waitForState(t *testing.T, m *Manager, id string, want domain.State) *domain.Session {
	t.Helper()

	deadline := time.After(5 * time.Second)

	for {
		sess, err := m.Get(context.Background(), id)
		require.NoError(t, err)

		if sess.State == want {
			return sess
		}

		select {
		case <-deadline:
			t.Fatalf("session %s never reached state %s, last state %s", id, want, sess.State)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// TestManagerCompletesSession checks the happy path through capture
// and conversion.
func TestManagerCompletesSession(t *testing.T) {
	t.Parallel()

	capturer := newFakeCapturer(&Result{
		SegmentPaths: []string{"/tmp/rec.ts"},
		BytesWritten: 4096,
	}, nil)

	manager, repo := newTestManager(t, capturer)
	manager.Recording.OutputFormat = "mp4"

	sess, err := manager.Start(context.Background(), StartOptions{
		URL:   "https://www.twitch.tv/somechannel",
		Actor: &domain.Actor{Hostname: "desktop", Username: "viewer"},
	})
	require.NoError(t, err)
	require.Equal(t, "twitch", sess.Platform)
	require.Equal(t, "best", sess.Quality)
	require.Equal(t, "mp4", sess.Format)
	require.Len(t, sess.ID, sessionIDBytes*2)

	waitForState(t, manager, sess.ID, domain.StateRecording)
	close(capturer.release)

	final := waitForState(t, manager, sess.ID, domain.StateCompleted)
	require.Equal(t, []string{"/tmp/rec.ts.mp4"}, final.OutputFiles)
	require.EqualValues(t, 4096, final.BytesWritten)
	require.False(t, final.FinishedAt.IsZero())

	persisted, err := repo.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StateCompleted, persisted.State)
	require.Equal(t, 0, manager.ActiveCount())
}

// TestManagerAutoCompress checks that enabled compression runs after
// conversion and its settings reach the converter.
func TestManagerAutoCompress(t *testing.T) {
	t.Parallel()

	capturer := newFakeCapturer(&Result{
		SegmentPaths: []string{"/tmp/rec.ts"},
		BytesWritten: 4096,
	}, nil)

	manager, _ := newTestManager(t, capturer)
	manager.Recording.OutputFormat = "mp4"
	manager.Recording.AutoCompress = true
	manager.Recording.AutoCompressMaxHeight = 720
	manager.Recording.AutoCompressKeepOriginal = true

	sess, err := manager.Start(context.Background(), StartOptions{URL: "https://kick.com/someone"})
	require.NoError(t, err)

	close(capturer.release)

	final := waitForState(t, manager, sess.ID, domain.StateCompleted)
	require.Equal(t, []string{"/tmp/rec.ts.mp4.small.mp4"}, final.OutputFiles)

	converter, ok := manager.Converter.(*fakeConverter)
	require.True(t, ok)
	require.Len(t, converter.compressed, 1)
	require.Equal(t, 720, converter.compressed[0].MaxHeight)
	require.True(t, converter.compressed[0].KeepOriginal)
}

// TestManagerAutoCompress_TSFormat checks that raw transport streams
// are still compressed when conversion itself is off.
func TestManagerAutoCompress_TSFormat(t *testing.T) {
	t.Parallel()

	capturer := newFakeCapturer(&Result{
		SegmentPaths: []string{"/tmp/rec.ts"},
		BytesWritten: 1,
	}, nil)

	manager, _ := newTestManager(t, capturer)
	manager.Recording.AutoCompress = true

	sess, err := manager.Start(context.Background(), StartOptions{URL: "https://kick.com/someone"})
	require.NoError(t, err)

	close(capturer.release)

	final := waitForState(t, manager, sess.ID, domain.StateCompleted)
	require.Equal(t, []string{"/tmp/rec.ts.small.mp4"}, final.OutputFiles)
}

// TestManagerRejectsDuplicateURL checks the active-URL dedupe.
func TestManagerRejectsDuplicateURL(t *testing.T) {
	t.Parallel()

	capturer := newFakeCapturer(&Result{BytesWritten: 1}, nil)
	manager, _ := newTestManager(t, capturer)

	first, err := manager.Start(context.Background(), StartOptions{URL: "https://kick.com/someone"})
	require.NoError(t, err)

	_, err = manager.Start(context.Background(), StartOptions{URL: "https://kick.com/someone"})
	require.ErrorIs(t, err, ErrAlreadyRecording)

	// A different URL is fine.
	_, err = manager.Start(context.Background(), StartOptions{URL: "https://kick.com/other"})
	require.NoError(t, err)

	require.Equal(t, 2, manager.ActiveCount())

	close(capturer.release)
	waitForState(t, manager, first.ID, domain.StateCompleted)
}

// TestManagerStop checks that a stop request yields the stopped state.
func TestManagerStop(t *testing.T) {
	t.Parallel()

	capturer := newFakeCapturer(&Result{BytesWritten: 1}, nil)
	manager, _ := newTestManager(t, capturer)

	sess, err := manager.Start(context.Background(), StartOptions{URL: "https://kick.com/someone"})
	require.NoError(t, err)

	waitForState(t, manager, sess.ID, domain.StateRecording)

	_, err = manager.Stop(context.Background(), sess.ID)
	require.NoError(t, err)

	final := waitForState(t, manager, sess.ID, domain.StateStopped)
	require.Empty(t, final.Error)

	// Stopping again reports the terminal state.
	_, err = manager.Stop(context.Background(), sess.ID)
	require.ErrorIs(t, err, ErrSessionFinished)

	_, err = manager.Stop(context.Background(), "missing")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

// TestManagerFailedCapture checks error propagation into the session.
func TestManagerFailedCapture(t *testing.T) {
	t.Parallel()

	capturer := newFakeCapturer(nil, ErrNoData)
	manager, _ := newTestManager(t, capturer)

	sess, err := manager.Start(context.Background(), StartOptions{URL: "https://kick.com/someone"})
	require.NoError(t, err)

	close(capturer.release)

	final := waitForState(t, manager, sess.ID, domain.StateFailed)
	require.Contains(t, final.Error, "no stream data")
}

// TestManagerShutdown checks that shutdown stops active sessions.
func TestManagerShutdown(t *testing.T) {
	t.Parallel()

	capturer := newFakeCapturer(&Result{BytesWritten: 1}, nil)
	manager, _ := newTestManager(t, capturer)

	sess, err := manager.Start(context.Background(), StartOptions{URL: "https://kick.com/someone"})
	require.NoError(t, err)

	waitForState(t, manager, sess.ID, domain.StateRecording)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, manager.Shutdown(shutdownCtx))

	final, err := manager.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StateStopped, final.State)
}

// TestManagerList checks ordering and snapshot isolation.
func TestManagerList(t *testing.T) {
	t.Parallel()

	capturer := newFakeCapturer(&Result{BytesWritten: 1}, nil)
	manager, _ := newTestManager(t, capturer)

	first, err := manager.Start(context.Background(), StartOptions{URL: "https://kick.com/one"})
	require.NoError(t, err)

	_, err = manager.Start(context.Background(), StartOptions{URL: "https://kick.com/two"})
	require.NoError(t, err)

	sessions := manager.List(context.Background())
	require.Len(t, sessions, 2)

	// Mutating a snapshot must not affect the manager's copy.
	sessions[0].URL = "mutated"

	again, err := manager.Get(context.Background(), sessions[0].ID)
	require.NoError(t, err)
	require.NotEqual(t, "mutated", again.URL)

	close(capturer.release)
	waitForState(t, manager, first.ID, domain.StateCompleted)
}
