package output

import (
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"

	"github.com/yourusername/spaces-cli/internal/models"
)

// PrintSpacesTable prints one row per space
func PrintSpacesTable(w io.Writer, tree *models.Tree) {
	table := tablewriter.NewWriter(w)
	table.Header("Space", "Focused", "Windows", "Focused Window")

	for _, space := range tree.Spaces {
		focused := ""
		if space.IsFocused {
			focused = "yes"
		}

		focusedWindow := "-"
		for _, win := range space.Windows {
			if win.IsFocused {
				focusedWindow = truncate(label(win), 40)
				break
			}
		}

		table.Append(
			space.ID,
			focused,
			fmt.Sprintf("%d", space.GetWindowCount()),
			focusedWindow,
		)
	}

	table.Render()
}

// PrintWindowsTable prints one row per window, in space order
func PrintWindowsTable(w io.Writer, tree *models.Tree) {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "App", "Title", "Space", "Focused")

	for _, space := range tree.Spaces {
		for _, win := range space.Windows {
			focused := ""
			if win.IsFocused {
				focused = "yes"
			}

			table.Append(
				win.ID,
				truncate(win.AppName, 20),
				truncate(win.Title, 40),
				space.ID,
				focused,
			)
		}
	}

	table.Render()
}

// Helper functions

// truncate fits s into maxLen terminal columns, ending in "..." when there
// is room for it. Wide runes count as two columns.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	if maxLen <= 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}

// label is the short human name of a window
func label(win models.Window) string {
	app := win.AppName
	if app == "" {
		app = "Unknown"
	}
	if win.Title == "" {
		return app
	}
	return fmt.Sprintf("%s - %s", app, win.Title)
}
