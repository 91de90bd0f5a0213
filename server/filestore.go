package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ErrUnknownCollection means a request named a collection the backend does
// not keep.
var ErrUnknownCollection = errors.New("unknown collection")

var collections = []string{"sales", "inventory", "expenses", "customers"}

// FileStore keeps one append-only JSON array per collection. It is the
// backend's whole persistence layer: simple, inspectable, good enough for a
// single shop's upload history.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Append adds records to a collection file. Existing records are never
// rewritten; re-uploads simply append again.
func (s *FileStore) Append(collection string, records []json.RawMessage) (int, error) {
	if !validCollection(collection) {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	if len(records) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read(collection)
	if err != nil {
		return 0, err
	}

	existing = append(existing, records...)
	if err := s.write(collection, existing); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Read returns every record stored for a collection.
func (s *FileStore) Read(collection string) ([]json.RawMessage, error) {
	if !validCollection(collection) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(collection)
}

// Counts returns the stored record count per collection.
func (s *FileStore) Counts() (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int, len(collections))
	for _, c := range collections {
		records, err := s.read(c)
		if err != nil {
			return nil, err
		}
		counts[c] = len(records)
	}
	return counts, nil
}

func (s *FileStore) read(collection string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(s.path(collection))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}
	return records, nil
}

func (s *FileStore) write(collection string, records []json.RawMessage) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("write %s: %w", collection, err)
	}

	tmp := s.path(collection) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", collection, err)
	}
	if err := os.Rename(tmp, s.path(collection)); err != nil {
		return fmt.Errorf("write %s: %w", collection, err)
	}
	return nil
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func validCollection(name string) bool {
	for _, c := range collections {
		if c == name {
			return true
		}
	}
	return false
}
