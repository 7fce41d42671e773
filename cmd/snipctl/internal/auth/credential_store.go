package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/snipbox/snipbox/pkg/sdk"
)

const sessionFile = "session.json"

// FileStore implements sdk.SessionStore using a JSON file.
// This is the CLI's session persistence implementation: the file is read
// once and every write goes straight back to disk.
type FileStore struct {
	path string

	mu     sync.Mutex
	values map[sdk.SessionKey]string
}

// Ensure FileStore implements sdk.SessionStore at compile time.
var _ sdk.SessionStore = (*FileStore)(nil)

// NewFileStore creates a FileStore at ~/.snipbox/session.json.
func NewFileStore() (*FileStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	return NewFileStoreAt(filepath.Join(home, ".snipbox"))
}

// NewFileStoreAt creates a FileStore inside dir, creating dir if needed.
func NewFileStoreAt(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", dir, err)
	}
	s := &FileStore{path: filepath.Join(dir, sessionFile)}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the session file.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the value of key, or "" when unset.
func (s *FileStore) Get(key sdk.SessionKey) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

// Set stores value under key and persists the session. An empty value
// removes the key. Nothing changes in memory unless the write succeeds.
func (s *FileStore) Set(key sdk.SessionKey, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := maps.Clone(s.values)
	if value == "" {
		delete(next, key)
	} else {
		next[key] = value
	}
	return s.commit(next)
}

// Remove deletes key and persists the session.
func (s *FileStore) Remove(key sdk.SessionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	next := maps.Clone(s.values)
	delete(next, key)
	return s.commit(next)
}

func (s *FileStore) commit(next map[sdk.SessionKey]string) error {
	if err := s.save(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

func (s *FileStore) load() error {
	s.values = make(map[sdk.SessionKey]string)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read session file: %w", err)
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return fmt.Errorf("failed to unmarshal session file %s: %w", s.path, err)
	}
	if s.values == nil {
		s.values = make(map[sdk.SessionKey]string)
	}
	return nil
}

// save writes the session, or deletes the file once nothing is left.
func (s *FileStore) save(values map[sdk.SessionKey]string) error {
	if len(values) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete session file: %w", err)
		}
		return nil
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}
