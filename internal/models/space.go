package models

import (
	"time"
)

// Space is a workspace tracked by the window manager, with the windows
// assigned to it during reconciliation.
type Space struct {
	ID        string   `json:"id" yaml:"id"`
	IsFocused bool     `json:"isFocused" yaml:"isFocused"`
	Windows   []Window `json:"windows" yaml:"windows"`
}

// Window is an application window. An empty Workspace means the window is
// unassigned (floating or not yet placed).
type Window struct {
	ID        string `json:"id" yaml:"id"`
	AppName   string `json:"appName,omitempty" yaml:"appName,omitempty"`
	Title     string `json:"title" yaml:"title"`
	Workspace string `json:"workspace,omitempty" yaml:"workspace,omitempty"`
	IsFocused bool   `json:"isFocused" yaml:"isFocused"`
}

// GetWindowCount returns the number of windows in this space
func (s *Space) GetWindowCount() int {
	return len(s.Windows)
}

// Clone returns a deep copy of the space.
func (s Space) Clone() Space {
	out := s
	if s.Windows != nil {
		out.Windows = make([]Window, len(s.Windows))
		copy(out.Windows, s.Windows)
	}
	return out
}

// Tree is the reconciled result of one refresh cycle. A Tree is never
// mutated after construction; a new refresh produces a new Tree.
type Tree struct {
	CycleID   string    `json:"cycleId" yaml:"cycleId"`
	FetchedAt time.Time `json:"fetchedAt" yaml:"fetchedAt"`
	Spaces    []Space   `json:"spaces" yaml:"spaces"`
}

// NewTree wraps reconciled spaces with cycle metadata.
func NewTree(cycleID string, spaces []Space) *Tree {
	return &Tree{
		CycleID:   cycleID,
		FetchedAt: time.Now(),
		Spaces:    spaces,
	}
}

// Clone returns a deep copy of the tree, safe to hand to another goroutine
// that might modify it.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	out := &Tree{
		CycleID:   t.CycleID,
		FetchedAt: t.FetchedAt,
		Spaces:    make([]Space, len(t.Spaces)),
	}
	for i, s := range t.Spaces {
		out.Spaces[i] = s.Clone()
	}
	return out
}

// FindSpace returns the space with the given ID, or nil.
func (t *Tree) FindSpace(id string) *Space {
	if t == nil {
		return nil
	}
	for i := range t.Spaces {
		if t.Spaces[i].ID == id {
			return &t.Spaces[i]
		}
	}
	return nil
}

// FindWindow returns the window with the given ID and the space holding it.
func (t *Tree) FindWindow(id string) (*Window, *Space) {
	if t == nil {
		return nil, nil
	}
	for i := range t.Spaces {
		s := &t.Spaces[i]
		for j := range s.Windows {
			if s.Windows[j].ID == id {
				return &s.Windows[j], s
			}
		}
	}
	return nil, nil
}

// FocusedSpace returns the focused space, or nil when none is focused.
func (t *Tree) FocusedSpace() *Space {
	if t == nil {
		return nil
	}
	for i := range t.Spaces {
		if t.Spaces[i].IsFocused {
			return &t.Spaces[i]
		}
	}
	return nil
}

// WindowCount returns the total number of windows across all spaces.
func (t *Tree) WindowCount() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, s := range t.Spaces {
		n += len(s.Windows)
	}
	return n
}

// SameLayout reports whether two trees show the same spaces, windows and
// focus flags, ignoring cycle metadata.
func (t *Tree) SameLayout(other *Tree) bool {
	if t == nil || other == nil {
		return t == other
	}
	if len(t.Spaces) != len(other.Spaces) {
		return false
	}
	for i, s := range t.Spaces {
		o := other.Spaces[i]
		if s.ID != o.ID || s.IsFocused != o.IsFocused || len(s.Windows) != len(o.Windows) {
			return false
		}
		for j, w := range s.Windows {
			if w != o.Windows[j] {
				return false
			}
		}
	}
	return true
}
