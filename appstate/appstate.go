package appstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ProcessConfig is the small piece of device state that lives outside the
// main store. EverSetup survives logout so a returning owner sees the login
// screen instead of first-run setup.
type ProcessConfig struct {
	EverSetup     bool  `json:"everSetup"`
	LoginAttempts int   `json:"loginAttempts"`
	FirstFailAt   int64 `json:"firstFailAt,omitempty"`
	LockedUntil   int64 `json:"lockedUntil,omitempty"`
	LastSyncAt    int64 `json:"lastSyncAt,omitempty"`
}

// Store persists the process config as a JSON file next to the database.
type Store struct {
	mu   sync.Mutex
	path string
	cfg  ProcessConfig
}

func NewStore(dataDir string) *Store {
	return &Store{path: filepath.Join(dataDir, "appstate.json")}
}

// Load reads the config from disk. A missing file is not an error; it just
// means a fresh device.
func (s *Store) Load() (ProcessConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Save writes the config to disk atomically via a temp file rename.
func (s *Store) Save(cfg ProcessConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(cfg)
}

// Update applies fn to the current config and persists the result. The whole
// read-modify-write runs under one lock so concurrent updates never lose an
// increment.
func (s *Store) Update(fn func(*ProcessConfig)) (ProcessConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.loadLocked()
	if err != nil {
		return ProcessConfig{}, err
	}
	fn(&cfg)
	if err := s.saveLocked(cfg); err != nil {
		return ProcessConfig{}, err
	}
	return cfg, nil
}

func (s *Store) loadLocked() (ProcessConfig, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.cfg = ProcessConfig{}
		return s.cfg, nil
	}
	if err != nil {
		return ProcessConfig{}, fmt.Errorf("load app state: %w", err)
	}

	var cfg ProcessConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return ProcessConfig{}, fmt.Errorf("load app state: %w", err)
	}
	s.cfg = cfg
	return cfg, nil
}

func (s *Store) saveLocked(cfg ProcessConfig) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("save app state: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("save app state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("save app state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("save app state: %w", err)
	}

	s.cfg = cfg
	return nil
}
