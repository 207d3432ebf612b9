package state

import (
	"time"

	"github.com/yourusername/spaces-cli/internal/models"
)

const (
	// StateVersion is the current state file format version
	StateVersion = 1
)

// Snapshot is the last good tree as persisted to disk
type Snapshot struct {
	Version     int          `json:"version"`
	Tree        *models.Tree `json:"tree"`
	LastUpdated time.Time    `json:"lastUpdated"`
}

// NewSnapshot wraps a tree for persistence
func NewSnapshot(tree *models.Tree) *Snapshot {
	return &Snapshot{
		Version:     StateVersion,
		Tree:        tree,
		LastUpdated: time.Now(),
	}
}

// Age returns how long ago the snapshot was written
func (s *Snapshot) Age() time.Duration {
	if s == nil || s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}

// migrateSnapshot handles migration from older state versions
func migrateSnapshot(old *Snapshot) *Snapshot {
	// Version 0 files predate the version field; the layout is unchanged
	return &Snapshot{
		Version:     StateVersion,
		Tree:        old.Tree,
		LastUpdated: old.LastUpdated,
	}
}
