package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/yourusername/spaces-cli/internal/models"
)

const (
	// DefaultStateDir is the directory under $HOME for state files
	DefaultStateDir = ".local/state/spaces"
	// DefaultStateFile is the state file name
	DefaultStateFile = "tree.json"
)

// GetStatePath returns the full path to the state file
func GetStatePath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, DefaultStateDir, DefaultStateFile)
}

// Store persists the last good tree so `list` has something to show when
// AeroSpace is unreachable.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a store writing to path, or to GetStatePath() if empty
func NewStore(path string) *Store {
	if path == "" {
		path = GetStatePath()
	}
	return &Store{path: path}
}

// Path returns the state file location
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted snapshot. A missing file is not an error and
// returns nil.
func (s *Store) Load() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	if snap.Version < StateVersion {
		snap = *migrateSnapshot(&snap)
	}
	if snap.Tree == nil {
		return nil, nil
	}
	for i := range snap.Tree.Spaces {
		if snap.Tree.Spaces[i].Windows == nil {
			snap.Tree.Spaces[i].Windows = []models.Window{}
		}
	}

	return &snap, nil
}

// LoadTree is Load without the envelope
func (s *Store) LoadTree() (*models.Tree, error) {
	snap, err := s.Load()
	if err != nil || snap == nil {
		return nil, err
	}
	return snap.Tree, nil
}

// Save persists tree atomically
func (s *Store) Save(tree *models.Tree) error {
	if tree == nil {
		return fmt.Errorf("nothing to save")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(NewSnapshot(tree), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Write atomically using temp file + rename
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename state file: %w", err)
	}

	return nil
}

// Reset removes the state file
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove state file: %w", err)
	}
	return nil
}
