package session

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type fileEntry struct {
	Value     string    `yaml:"value"`
	ExpiresAt time.Time `yaml:"expires_at"`
}

// FileStore keeps entries in a YAML document on disk. Expired entries read as absent and are
// dropped on the next write.
type FileStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewFileStore returns a store backed by path. The file is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.load()
	if err != nil {
		slog.Warn("could not read session file", "path", s.path, "err", err)
		return "", false
	}
	e, ok := entries[key]
	if !ok || !e.ExpiresAt.After(s.now()) {
		return "", false
	}
	return e.Value, true
}

func (s *FileStore) Put(key, value string, expires time.Time) {
	s.update(func(entries map[string]fileEntry) {
		entries[key] = fileEntry{Value: value, ExpiresAt: expires.UTC()}
	})
}

func (s *FileStore) Delete(key string) {
	s.update(func(entries map[string]fileEntry) {
		delete(entries, key)
	})
}

func (s *FileStore) update(fn func(map[string]fileEntry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.load()
	if err != nil {
		slog.Warn("discarding unreadable session file", "path", s.path, "err", err)
		entries = make(map[string]fileEntry)
	}
	fn(entries)
	now := s.now()
	for k, e := range entries {
		if !e.ExpiresAt.After(now) {
			delete(entries, k)
		}
	}
	if err := s.save(entries); err != nil {
		slog.Warn("could not write session file", "path", s.path, "err", err)
	}
}

func (s *FileStore) load() (map[string]fileEntry, error) {
	entries := make(map[string]fileEntry)
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	if entries == nil {
		entries = make(map[string]fileEntry)
	}
	return entries, nil
}

// save writes to a temp file in the same directory and renames it over the target.
func (s *FileStore) save(entries map[string]fileEntry) error {
	b, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
