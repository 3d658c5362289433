package progress

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Document keys for the two persisted JSON documents.
const (
	ProgressKey = "examtopics_progress"
	SettingsKey = "examtopics_settings"
)

// Storage is the key-value persistence boundary for the local store.
// Implementations hold whole JSON documents under fixed keys.
type Storage interface {
	// Read returns the stored document, or (nil, nil) when absent.
	Read(key string) ([]byte, error)
	// Write replaces the stored document.
	Write(key string, data []byte) error
}

// DirStorage persists each document as a JSON file in a directory.
type DirStorage struct {
	dir string
}

func NewDirStorage(dir string) (*DirStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &DirStorage{dir: dir}, nil
}

func (s *DirStorage) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *DirStorage) Read(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (s *DirStorage) Write(key string, data []byte) error {
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// MemStorage is an in-memory Storage for tests and embedded use.
type MemStorage struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemStorage() *MemStorage {
	return &MemStorage{docs: make(map[string][]byte)}
}

func (s *MemStorage) Read(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (s *MemStorage) Write(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = append([]byte(nil), data...)
	return nil
}
