package store

import (
	"bytes"
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
)

// KV is the persistence port the association store writes through.
// Implementations must make Put a whole-record atomic replace: a crash
// mid-write leaves either the old record or the new one, never a mix.
type KV interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put atomically replaces the value for key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns all stored keys in unspecified order.
	Keys(ctx context.Context) ([]string, error)
}

// FileKV stores each key as a JSON file in a directory.
// Writes go through an atomic rename so records are replaced whole.
type FileKV struct {
	dir string
}

// NewFileKV creates a file-backed KV rooted at dir, creating it if needed.
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileKV{dir: dir}, nil
}

// Dir returns the storage directory.
func (s *FileKV) Dir() string {
	return s.dir
}

func (s *FileKV) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}

// Get implements KV.
func (s *FileKV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return data, nil
}

// Put implements KV.
func (s *FileKV) Put(ctx context.Context, key string, value []byte) error {
	return atomic.WriteFile(s.path(key), bytes.NewReader(value))
}

// Delete implements KV.
func (s *FileKV) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Keys implements KV.
func (s *FileKV) Keys(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// MemKV is an in-memory KV for tests.
// Error hooks let tests inject a run of failures per operation.
type MemKV struct {
	mu   sync.RWMutex
	data map[string][]byte

	// FailNextPuts/FailNextGets make that many upcoming operations return
	// PutErr/GetErr before normal behavior resumes.
	FailNextPuts int
	PutErr       error
	FailNextGets int
	GetErr       error

	// PutCount and GetCount record total operations, including failures.
	PutCount int
	GetCount int
}

// NewMemKV creates an empty in-memory KV.
func NewMemKV() *MemKV {
	return &MemKV{data: make(map[string][]byte)}
}

// Get implements KV.
func (s *MemKV) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.GetCount++
	if s.FailNextGets > 0 {
		s.FailNextGets--
		return nil, s.GetErr
	}

	data, ok := s.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Put implements KV.
func (s *MemKV) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.PutCount++
	if s.FailNextPuts > 0 {
		s.FailNextPuts--
		return s.PutErr
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored
	return nil
}

// Delete implements KV.
func (s *MemKV) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Keys implements KV.
func (s *MemKV) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}
