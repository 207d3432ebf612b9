// Package focus picks the next or previous window or workspace relative to
// the current focus in a reconciled tree.
package focus

import (
	"errors"

	"github.com/yourusername/spaces-cli/internal/models"
)

// ErrNoTarget is returned when there is nothing to move focus to.
var ErrNoTarget = errors.New("nothing to focus")

// Target is a window to focus and the space that owns it.
type Target struct {
	SpaceID  string
	WindowID string
}

// CycleWindow returns the window after (or before) the focused one in the
// focused space, wrapping at either end. Without a focused window it starts
// from the first window going forward, the last going back.
func CycleWindow(tree *models.Tree, forward bool) (Target, error) {
	if tree == nil {
		return Target{}, ErrNoTarget
	}
	space := tree.FocusedSpace()
	if space == nil || len(space.Windows) == 0 {
		return Target{}, ErrNoTarget
	}

	idx := focusedIndex(space.Windows)
	switch {
	case idx < 0 && forward:
		idx = 0
	case idx < 0:
		idx = len(space.Windows) - 1
	default:
		idx = step(idx, len(space.Windows), forward)
	}

	return Target{SpaceID: space.ID, WindowID: space.Windows[idx].ID}, nil
}

// CycleSpace returns the space after (or before) the focused one, in tree
// order and wrapping. Only spaces present in the tree are candidates.
func CycleSpace(tree *models.Tree, forward bool) (string, error) {
	if tree == nil || len(tree.Spaces) == 0 {
		return "", ErrNoTarget
	}

	idx := -1
	for i := range tree.Spaces {
		if tree.Spaces[i].IsFocused {
			idx = i
			break
		}
	}

	switch {
	case idx < 0 && forward:
		idx = 0
	case idx < 0:
		idx = len(tree.Spaces) - 1
	default:
		if len(tree.Spaces) == 1 {
			return "", ErrNoTarget
		}
		idx = step(idx, len(tree.Spaces), forward)
	}

	return tree.Spaces[idx].ID, nil
}

func focusedIndex(windows []models.Window) int {
	for i, w := range windows {
		if w.IsFocused {
			return i
		}
	}
	return -1
}

func step(idx, n int, forward bool) int {
	if forward {
		return (idx + 1) % n
	}
	return (idx - 1 + n) % n
}
