package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// PrefStore persists scalar user preferences.
// Get never fails: an unreadable store reports the key as absent.
type PrefStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// JSONStore persists preferences in a single JSON object on disk.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONStore creates a JSON-backed preference store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Get returns the stored value for key.
func (s *JSONStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		slog.Warn("read preferences", "path", s.path, "error", err)
		return "", false
	}
	value, ok := values[key]
	return value, ok
}

// Set writes key and replaces the file atomically.
func (s *JSONStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		values = map[string]string{}
	}
	values[key] = value

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// load reads the file or returns an empty map when it does not exist yet.
func (s *JSONStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// OpenPrefStore opens the preference store selected by settings.
func OpenPrefStore(s PrefsSettings) (PrefStore, error) {
	switch s.Driver {
	case PrefsDriverJSON:
		return NewJSONStore(s.Path), nil
	default:
		store, err := OpenSQLiteStore(s.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}
