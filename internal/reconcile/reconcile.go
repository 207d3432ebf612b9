package reconcile

import (
	"github.com/yourusername/spaces-cli/internal/models"
)

// FocusedSpaceFunc resolves the focused space id for windows that carry no
// workspace. ok is false when no space is focused or the lookup failed.
type FocusedSpaceFunc func() (id string, ok bool)

// Input is everything the merge needs from one refresh cycle.
type Input struct {
	Spaces        []models.Space
	Windows       []models.Window
	FocusedSpace  *models.Space
	FocusedWindow *models.Window

	// ResolveFocusedSpace is called once per unassigned window. When nil,
	// FocusedSpace is used.
	ResolveFocusedSpace FocusedSpaceFunc
}

// Merge builds the visible space list from independently fetched snapshots.
//
// Spaces keep the order in which their ids first appear in Input.Spaces; a
// later duplicate id replaces the earlier record in place. Windows are
// appended in input order to the space they name, or to the focused space
// when they name none. Windows naming an unknown space are dropped. Spaces
// with no windows are dropped unless focused. The inputs are not modified.
func Merge(in Input) []models.Space {
	focusedSpaceID := ""
	if in.FocusedSpace != nil {
		focusedSpaceID = in.FocusedSpace.ID
	}
	focusedWindowID := ""
	if in.FocusedWindow != nil {
		focusedWindowID = in.FocusedWindow.ID
	}

	resolve := in.ResolveFocusedSpace
	if resolve == nil {
		resolve = func() (string, bool) {
			return focusedSpaceID, focusedSpaceID != ""
		}
	}

	order := make([]string, 0, len(in.Spaces))
	byID := make(map[string]*models.Space, len(in.Spaces))
	for _, s := range in.Spaces {
		space := &models.Space{
			ID:        s.ID,
			IsFocused: focusedSpaceID != "" && s.ID == focusedSpaceID,
			Windows:   []models.Window{},
		}
		if _, seen := byID[s.ID]; !seen {
			order = append(order, s.ID)
		}
		byID[s.ID] = space
	}

	for _, w := range in.Windows {
		w.IsFocused = focusedWindowID != "" && w.ID == focusedWindowID

		target := w.Workspace
		if target == "" {
			id, ok := resolve()
			if !ok {
				continue
			}
			target = id
		}

		if space, ok := byID[target]; ok {
			space.Windows = append(space.Windows, w)
		}
	}

	result := make([]models.Space, 0, len(order))
	for _, id := range order {
		space := byID[id]
		if len(space.Windows) > 0 || space.IsFocused {
			result = append(result, *space)
		}
	}
	return result
}
