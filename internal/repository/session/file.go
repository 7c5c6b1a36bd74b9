package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hairoku/hairoku/internal/config"
	domain "github.com/hairoku/hairoku/internal/domain/session"
)

// Repository defines persistence operations for recording sessions.
type Repository interface {
	Load(ctx context.Context) ([]*domain.Session, error)
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	SaveAll(ctx context.Context, sessions []*domain.Session) error
}

// ErrNotFound is returned when no stored session has the requested ID.
// A missing session file is an empty history, not this error.
var ErrNotFound = errors.New("session not found")

// FileRepository persists recording sessions to a JSON file on disk.
// The whole session list is rewritten on every save, which is fine for
// the handful of concurrent recordings the daemon manages.
type FileRepository struct {
	// path is the filesystem location of the JSON session file.
	path string
	// mu protects concurrent access to the session file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads every stored session from disk. A missing file is an
// empty history, not an error.
func (r *FileRepository) Load(_ context.Context) ([]*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loadLocked()
}

// Get returns one session by ID.
func (r *FileRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions, err := r.loadLocked()
	if err != nil {
		return nil, err
	}

	for _, s := range sessions {
		if s.ID == id {
			return s, nil
		}
	}

	return nil, ErrNotFound
}

// Save inserts or replaces one session in the stored list.
func (r *FileRepository) Save(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions, err := r.loadLocked()
	if err != nil {
		return err
	}

	replaced := false

	for i, s := range sessions {
		if s.ID == session.ID {
			sessions[i] = session
			replaced = true

			break
		}
	}

	if !replaced {
		sessions = append(sessions, session)
	}

	return r.saveLocked(sessions)
}

// SaveAll replaces the whole stored session list.
func (r *FileRepository) SaveAll(_ context.Context, sessions []*domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.saveLocked(sessions)
}

func (r *FileRepository) loadLocked() ([]*domain.Session, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read session file: %w", err)
	}

	var sessions []*domain.Session
	if err = json.Unmarshal(contents, &sessions); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}

	return sessions, nil
}

func (r *FileRepository) saveLocked(sessions []*domain.Session) error {
	if sessions == nil {
		sessions = []*domain.Session{}
	}

	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}

	return nil
}
