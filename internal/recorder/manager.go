package recorder

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hairoku/hairoku/internal/config"
	"github.com/hairoku/hairoku/internal/convert"
	domain "github.com/hairoku/hairoku/internal/domain/session"
	"github.com/hairoku/hairoku/internal/logger"
	"github.com/hairoku/hairoku/internal/output"
	"github.com/hairoku/hairoku/internal/platform"
	"github.com/hairoku/hairoku/internal/repository/session"
)

// Session ID length in random bytes, rendered as hex.
const sessionIDBytes = 4

var (
	// ErrAlreadyRecording is returned when a non-terminal session
	// for the same URL exists.
	ErrAlreadyRecording = errors.New("url is already being recorded")
	// ErrSessionNotFound is returned for unknown session IDs.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionFinished is returned when stopping a session
	// that already reached a terminal state.
	ErrSessionFinished = errors.New("session already finished")
)

// Capturer is the part of the engine the manager drives.
// Split out so tests can substitute a fake.
type Capturer interface {
	Record(ctx context.Context, req *Request) (*Result, error)
}

// PostProcessor converts and compresses finished captures.
// Implemented by convert.Converter.
type PostProcessor interface {
	Convert(ctx context.Context, inputPath string, format convert.Format) (string, error)
	Compress(ctx context.Context, inputPath string, opts convert.CompressOptions) (string, error)
}

// StartOptions describe a recording to begin.
type StartOptions struct {
	URL      string
	Quality  string
	Format   string
	Filename string
	Actor    *domain.Actor
}

// Manager owns every recording session in the daemon: it starts capture
// goroutines, tracks their lifecycle, persists transitions and stops
// them on request or shutdown.
type Manager struct {
	Recording config.RecordingConfig
	OutputDir string

	Engine    Capturer
	Converter PostProcessor
	Repo      session.Repository

	mu      sync.Mutex
	active  map[string]*managedSession
	history []*domain.Session
	wg      sync.WaitGroup
}

type managedSession struct {
	session       *domain.Session
	cancel        context.CancelFunc
	stopRequested bool
}

// NewManager creates a manager with an empty session registry.
func NewManager(
	recording config.RecordingConfig,
	outputDir string,
	engine Capturer,
	converter PostProcessor,
	repo session.Repository,
) *Manager {
	return &Manager{
		Recording: recording,
		OutputDir: outputDir,
		Engine:    engine,
		Converter: converter,
		Repo:      repo,
		active:    make(map[string]*managedSession),
	}
}

// SeedHistory preloads finished sessions from a previous process so Get
// and List see them after a restart. Non-terminal records are skipped.
func (m *Manager) SeedHistory(sessions []*domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sess := range sessions {
		if sess == nil || !sess.State.IsTerminal() {
			continue
		}

		m.history = append(m.history, sess.Clone())
	}
}

func newSessionID() string {
	buf := make([]byte, sessionIDBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in serious trouble.
		panic(fmt.Sprintf("generate session id: %v", err))
	}

	return hex.EncodeToString(buf)
}

// Start begins recording a URL. The returned session is a snapshot;
// progress is visible through Get and List.
func (m *Manager) Start(ctx context.Context, opts StartOptions) (*domain.Session, error) {
	quality := opts.Quality
	if quality == "" {
		quality = m.Recording.Quality
	}

	format := opts.Format
	if format == "" {
		format = m.Recording.OutputFormat
	}

	m.mu.Lock()

	for _, managed := range m.active {
		if managed.session.URL == opts.URL && !managed.session.State.IsTerminal() {
			m.mu.Unlock()
			return nil, fmt.Errorf("%w: %s", ErrAlreadyRecording, opts.URL)
		}
	}

	sess := &domain.Session{
		ID:        newSessionID(),
		URL:       opts.URL,
		Platform:  string(platform.Detect(opts.URL)),
		Quality:   quality,
		Format:    string(convert.NormalizeFormat(format)),
		State:     domain.StatePending,
		StartedBy: opts.Actor.Clone(),
		StartedAt: time.Now(),
	}

	captureCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	managed := &managedSession{session: sess, cancel: cancel}
	m.active[sess.ID] = managed

	m.mu.Unlock()

	m.persist(captureCtx, sess)

	m.wg.Add(1)

	go m.run(captureCtx, managed, opts.Filename)

	return sess.Clone(), nil
}

// run drives one session from capture through conversion to its
// terminal state.
func (m *Manager) run(ctx context.Context, managed *managedSession, filename string) {
	defer m.wg.Done()

	sess := managed.session
	ctx = logger.WithKV(ctx, "session_id", sess.ID, "url", sess.URL)

	outputPath, err := output.Resolve(m.OutputDir, filename, sess.URL, "", output.Options{
		ChannelFolders:      m.Recording.ChannelFolders,
		DateFolders:         m.Recording.DateFolders,
		FilenameWithChannel: m.Recording.FilenameWithChannel,
	})
	if err != nil {
		m.finish(ctx, managed, domain.StateFailed, err.Error())
		return
	}

	m.transition(ctx, sess, domain.StateRecording)

	logger.InfoKV(ctx, "recording started", "output", outputPath)

	result, err := m.Engine.Record(ctx, &Request{
		URL:           sess.URL,
		Quality:       sess.Quality,
		OutputPath:    outputPath,
		RetryCount:    m.Recording.RetryCount,
		RetryWait:     m.Recording.RetryWait,
		HTTPTimeout:   m.Recording.HTTPTimeout,
		StreamTimeout: m.Recording.StreamTimeout,
		MaxSizeMB:     m.Recording.MaxSizeMB,
		SizeMarginMB:  m.Recording.SizeMarginMB,
		OnProgress: func(n int64) {
			m.mu.Lock()
			sess.BytesWritten = n
			m.mu.Unlock()
		},
	})
	if err != nil {
		if m.wasStopRequested(managed) {
			m.finish(ctx, managed, domain.StateStopped, "")
		} else {
			m.finish(ctx, managed, domain.StateFailed, err.Error())
		}

		return
	}

	m.mu.Lock()
	sess.OutputFiles = append([]string(nil), result.SegmentPaths...)
	sess.BytesWritten = result.BytesWritten
	m.mu.Unlock()

	finalPaths := m.convertSegments(ctx, sess, result.SegmentPaths)

	m.mu.Lock()
	sess.OutputFiles = finalPaths
	m.mu.Unlock()

	if m.wasStopRequested(managed) {
		m.finish(ctx, managed, domain.StateStopped, "")
	} else {
		m.finish(ctx, managed, domain.StateCompleted, "")
	}
}

// convertSegments post-processes captured segments, falling back to
// the raw capture when a conversion fails.
func (m *Manager) convertSegments(ctx context.Context, sess *domain.Session, segments []string) []string {
	format := convert.NormalizeFormat(sess.Format)
	needsConvert := format != convert.FormatTS

	if len(segments) == 0 || (!needsConvert && !m.Recording.AutoCompress) {
		return segments
	}

	m.transition(ctx, sess, domain.StateConverting)

	// Conversion outlives a stop request on purpose: captured data
	// should still end up in the requested format.
	convertCtx := context.WithoutCancel(ctx)
	finalPaths := make([]string, 0, len(segments))

	for _, segment := range segments {
		path := segment

		if needsConvert {
			converted, err := m.Converter.Convert(convertCtx, segment, format)
			if err != nil {
				logger.WarnKV(ctx, "conversion failed, keeping raw capture",
					"segment", segment, "error", err)

				finalPaths = append(finalPaths, segment)

				continue
			}

			path = converted
		}

		finalPaths = append(finalPaths, m.compress(convertCtx, path))
	}

	return finalPaths
}

// compress applies the optional space-saving re-encode to one finished file.
func (m *Manager) compress(ctx context.Context, path string) string {
	if !m.Recording.AutoCompress {
		return path
	}

	compressed, err := m.Converter.Compress(ctx, path, CompressOptions(m.Recording))
	if err != nil {
		logger.WarnKV(ctx, "compression failed, keeping uncompressed file",
			"file", path, "error", err)

		return path
	}

	return compressed
}

// CompressOptions maps the recording settings onto the converter's knobs.
func CompressOptions(rec config.RecordingConfig) convert.CompressOptions {
	return convert.CompressOptions{
		Codec:            rec.AutoCompressCodec,
		Preset:           rec.AutoCompressPreset,
		MaxHeight:        rec.AutoCompressMaxHeight,
		FPS:              rec.AutoCompressFPS,
		VideoBitrateKbps: rec.AutoCompressVideoKbps,
		AudioBitrateKbps: rec.AutoCompressAudioKbps,
		KeepOriginal:     rec.AutoCompressKeepOriginal,
	}
}

func (m *Manager) wasStopRequested(managed *managedSession) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return managed.stopRequested
}

func (m *Manager) transition(ctx context.Context, sess *domain.Session, state domain.State) {
	m.mu.Lock()
	sess.State = state
	m.mu.Unlock()

	m.persist(ctx, sess)
}

// finish moves a session to its terminal state and out of the
// active registry.
func (m *Manager) finish(ctx context.Context, managed *managedSession, state domain.State, errMessage string) {
	sess := managed.session

	m.mu.Lock()
	sess.State = state
	sess.Error = errMessage
	sess.FinishedAt = time.Now()
	delete(m.active, sess.ID)
	m.history = append(m.history, sess)
	m.mu.Unlock()

	m.persist(ctx, sess)

	logger.InfoKV(ctx, "recording finished",
		"state", state, "bytes", sess.BytesWritten, "files", len(sess.OutputFiles))
}

func (m *Manager) persist(ctx context.Context, sess *domain.Session) {
	m.mu.Lock()
	snapshot := sess.Clone()
	m.mu.Unlock()

	if err := m.Repo.Save(context.WithoutCancel(ctx), snapshot); err != nil {
		logger.ErrorKV(ctx, "failed to persist session", "session_id", snapshot.ID, "error", err)
	}
}

// Stop requests a session to stop and returns its current snapshot.
// The session reaches its terminal state asynchronously.
func (m *Manager) Stop(_ context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	managed, ok := m.active[id]
	if !ok {
		for _, s := range m.history {
			if s.ID == id {
				return nil, fmt.Errorf("%w: %s", ErrSessionFinished, id)
			}
		}

		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	managed.stopRequested = true
	managed.cancel()

	return managed.session.Clone(), nil
}

// Get returns a snapshot of one session, active or finished.
func (m *Manager) Get(_ context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if managed, ok := m.active[id]; ok {
		return managed.session.Clone(), nil
	}

	for _, s := range m.history {
		if s.ID == id {
			return s.Clone(), nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
}

// List returns snapshots of every session this process has seen,
// newest first.
func (m *Manager) List(_ context.Context) []*domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions := make([]*domain.Session, 0, len(m.active)+len(m.history))

	for _, managed := range m.active {
		sessions = append(sessions, managed.session.Clone())
	}

	for _, s := range m.history {
		sessions = append(sessions, s.Clone())
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})

	return sessions
}

// ActiveURLs returns the URLs of sessions that are still running.
func (m *Manager) ActiveURLs(_ context.Context) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	urls := make([]string, 0, len(m.active))
	for _, managed := range m.active {
		urls = append(urls, managed.session.URL)
	}

	return urls
}

// ActiveCount returns the number of running sessions.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.active)
}

// Shutdown stops every active session and waits for their goroutines,
// giving up when the context expires.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()

	for _, managed := range m.active {
		managed.stopRequested = true
		managed.cancel()
	}

	m.mu.Unlock()

	done := make(chan struct{})

	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for recordings to stop: %w", ctx.Err())
	}
}
