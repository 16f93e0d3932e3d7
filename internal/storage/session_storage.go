package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// SessionStorage keeps blobs in a scratch directory that lives only as long
// as the process. Handles are uuid-based filenames; the live-handle set is
// tracked here, independently of any catalog snapshot, so Close can release
// everything that was ever issued and not yet revoked.
type SessionStorage struct {
	basePath string
	recorder RevocationRecorder

	mu     sync.Mutex
	live   map[string]struct{}
	closed bool
}

// NewSessionStorage creates the scratch directory. An empty basePath puts
// it under the OS temp dir.
func NewSessionStorage(basePath string) (*SessionStorage, error) {
	if basePath == "" {
		dir, err := os.MkdirTemp("", "vidshelf-session-")
		if err != nil {
			return nil, fmt.Errorf("failed to create session directory: %w", err)
		}
		basePath = dir
	} else if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &SessionStorage{
		basePath: basePath,
		live:     make(map[string]struct{}),
	}, nil
}

// SetRecorder installs an observer for effective revocations.
func (s *SessionStorage) SetRecorder(r RevocationRecorder) {
	s.mu.Lock()
	s.recorder = r
	s.mu.Unlock()
}

// BasePath returns the scratch directory.
func (s *SessionStorage) BasePath() string {
	return s.basePath
}

func (s *SessionStorage) Save(r io.Reader, info FileInfo) (string, error) {
	ext := filepath.Ext(info.Filename)
	if ext == "" {
		ext = ".bin"
	}

	handle := uuid.New().String() + ext
	fullPath := filepath.Join(s.basePath, handle)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	s.mu.Lock()
	s.live[handle] = struct{}{}
	s.mu.Unlock()

	return handle, nil
}

func (s *SessionStorage) SaveBytes(b []byte, ext string) (string, error) {
	return s.Save(bytes.NewReader(b), FileInfo{Filename: "blob" + ext})
}

func (s *SessionStorage) Open(handle string) (io.ReadSeekCloser, error) {
	fullPath, err := s.Path(handle)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Path resolves a live handle to its on-disk location. Unknown and revoked
// handles error.
func (s *SessionStorage) Path(handle string) (string, error) {
	cleanPath := filepath.Clean(handle)
	if strings.Contains(cleanPath, "..") || strings.ContainsRune(cleanPath, os.PathSeparator) {
		return "", fmt.Errorf("invalid handle")
	}

	s.mu.Lock()
	_, ok := s.live[cleanPath]
	s.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("unknown or revoked handle: %s", handle)
	}

	return filepath.Join(s.basePath, cleanPath), nil
}

// Revoke deletes the blob behind a handle. Revoking a handle that was
// already revoked (or never issued) is a no-op, so callers cannot
// double-release.
func (s *SessionStorage) Revoke(handle string) error {
	s.mu.Lock()
	_, ok := s.live[handle]
	if ok {
		delete(s.live, handle)
	}
	recorder := s.recorder
	s.mu.Unlock()

	if !ok {
		return nil
	}

	if err := os.Remove(filepath.Join(s.basePath, handle)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	if recorder != nil {
		recorder.Revoked(handle)
	}
	return nil
}

// Close revokes every still-live handle exactly once and removes the
// scratch directory. Safe to call more than once.
func (s *SessionStorage) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	handles := make([]string, 0, len(s.live))
	for h := range s.live {
		handles = append(handles, h)
	}
	s.mu.Unlock()

	for _, h := range handles {
		if err := s.Revoke(h); err != nil {
			return err
		}
	}
	return os.RemoveAll(s.basePath)
}
