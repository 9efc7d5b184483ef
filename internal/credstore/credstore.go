package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// Well-known keys. Verification and reset codes are deliberately absent:
// codes are checked server-side and never cached locally.
const (
	KeyToken                       = "token"
	KeyUser                        = "user"
	KeyPendingVerificationEmail    = "pendingVerificationEmail"
	KeyPendingRegistrationPassword = "pendingRegistrationPassword"
	KeyResetPasswordEmail          = "resetPasswordEmail"
)

// ErrKeyNotFound is returned by Get when the key has no stored value.
var ErrKeyNotFound = errors.New("credential key not found")

// Store is the persistent key-value storage for session credentials and
// short-lived flow state.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(keys ...string) error
	Clear() error
}

// FileStore is a Store backed by a single JSON file. The filesystem is
// abstracted so tests run against an in-memory fs.
type FileStore struct {
	mu     sync.Mutex
	fs     afero.Fs
	path   string
	values map[string]string
}

// NewFileStore opens (or initializes) the credential file at path.
func NewFileStore(fs afero.Fs, path string) (*FileStore, error) {
	s := &FileStore{
		fs:     fs,
		path:   path,
		values: make(map[string]string),
	}

	data, err := afero.ReadFile(fs, path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &s.values); err != nil {
			return nil, fmt.Errorf("credstore: corrupt credential file %s: %w", path, err)
		}
	case errors.Is(err, afero.ErrFileNotFound):
		// first run, nothing persisted yet
	default:
		return nil, fmt.Errorf("credstore: read %s: %w", path, err)
	}

	return s, nil
}

// Get returns the stored value for key, or ErrKeyNotFound.
func (s *FileStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.values[key]
	if !ok {
		return "", fmt.Errorf("credstore: get %s: %w", key, ErrKeyNotFound)
	}
	return value, nil
}

// Set stores value under key and persists immediately.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return s.flush()
}

// Delete removes the given keys. Missing keys are ignored.
func (s *FileStore) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.values, key)
	}
	return s.flush()
}

// Clear removes every stored key. Used on logout.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = make(map[string]string)
	return s.flush()
}

// flush writes the value map to disk. Caller must hold s.mu.
func (s *FileStore) flush() error {
	data, err := json.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("credstore: marshal credentials: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("credstore: create %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0o600); err != nil {
		return fmt.Errorf("credstore: write %s: %w", s.path, err)
	}
	return nil
}
