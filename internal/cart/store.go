package cart

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned by Store.Load when nothing has been saved yet
var ErrNotFound = errors.New("cart not found")

// Store is a single durable slot holding the serialized cart. Save
// replaces the whole value; there are no partial updates.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// FileStore keeps the cart in one file on local disk
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path. Parent directories are
// created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Store
func (s *FileStore) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart file: %w", err)
	}
	return data, nil
}

// Save implements Store. The file is replaced atomically through a
// temporary file in the same directory.
func (s *FileStore) Save(_ context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create cart directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cart-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cart file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cart file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cart file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace cart file: %w", err)
	}
	return nil
}

// MemoryStore keeps the cart in process memory
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
	set  bool
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store
func (s *MemoryStore) Load(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.set {
		return nil, ErrNotFound
	}
	return append([]byte(nil), s.data...), nil
}

// Save implements Store
func (s *MemoryStore) Save(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = append([]byte(nil), data...)
	s.set = true
	return nil
}
