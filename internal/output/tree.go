package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/sys/unix"

	"github.com/yourusername/spaces-cli/internal/models"
)

// TreeOptions controls the appearance of the tree view
type TreeOptions struct {
	UseUnicode bool
	ShowIDs    bool
	MaxWidth   int
}

// DefaultTreeOptions returns sensible defaults for the current terminal
func DefaultTreeOptions() TreeOptions {
	width, _ := getTerminalSize()
	return TreeOptions{
		UseUnicode: supportsUnicode(),
		ShowIDs:    true,
		MaxWidth:   width,
	}
}

var (
	spaceColor = color.New(color.FgCyan, color.Bold)
	focusColor = color.New(color.FgGreen, color.Bold)
	appColor   = color.New(color.FgYellow)
	dimColor   = color.New(color.Faint)
)

// RenderTree renders spaces and their windows as an indented tree. Colors
// follow color.NoColor.
func RenderTree(tree *models.Tree, opts TreeOptions) string {
	if tree == nil || len(tree.Spaces) == 0 {
		return "No spaces\n"
	}

	style := styleFor(opts.UseUnicode)
	var b strings.Builder

	for _, space := range tree.Spaces {
		header := spaceColor.Sprintf("Space %s", space.ID)
		if space.IsFocused {
			header += " " + focusColor.Sprint(style.Focus)
		}
		header += dimColor.Sprintf("  %s", pluralWindows(space.GetWindowCount()))
		b.WriteString(header)
		b.WriteString("\n")

		if len(space.Windows) == 0 {
			b.WriteString(dimColor.Sprint("    (empty)"))
			b.WriteString("\n")
			continue
		}

		for i, win := range space.Windows {
			prefix := style.Branch
			if i == len(space.Windows)-1 {
				prefix = style.Last
			}
			b.WriteString(prefix)
			b.WriteString(windowLine(win, style, opts, runewidth.StringWidth(prefix)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// windowLine formats one window, fitting the title into the columns left
// after indent
func windowLine(win models.Window, style TreeStyle, opts TreeOptions, indent int) string {
	var parts []string
	used := indent

	if opts.ShowIDs {
		id := fmt.Sprintf("[%s]", win.ID)
		parts = append(parts, dimColor.Sprint(id))
		used += runewidth.StringWidth(id) + 1
	}

	app := win.AppName
	if app == "" {
		app = "Unknown"
	}
	parts = append(parts, appColor.Sprint(app))
	used += runewidth.StringWidth(app) + 1

	if win.IsFocused {
		used += runewidth.StringWidth(style.Focus) + 1
	}

	if win.Title != "" {
		title := win.Title
		if opts.MaxWidth > 0 {
			room := opts.MaxWidth - used
			if room < 4 {
				title = ""
			} else {
				title = truncate(title, room)
			}
		}
		if title != "" {
			parts = append(parts, title)
		}
	}

	if win.IsFocused {
		parts = append(parts, focusColor.Sprint(style.Focus))
	}

	return strings.Join(parts, " ")
}

func pluralWindows(n int) string {
	if n == 1 {
		return "1 window"
	}
	return fmt.Sprintf("%d windows", n)
}

// PrintTree writes the tree view to w
func PrintTree(w io.Writer, tree *models.Tree, opts TreeOptions) {
	fmt.Fprint(w, RenderTree(tree, opts))
}

// getTerminalSize returns the current terminal dimensions
func getTerminalSize() (width, height int) {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		// Default to 80x24 if we can't detect
		return 80, 24
	}
	return int(ws.Col), int(ws.Row)
}

// supportsUnicode checks if the terminal supports Unicode
func supportsUnicode() bool {
	lang := os.Getenv("LANG")
	lcAll := os.Getenv("LC_ALL")

	return strings.Contains(lang, "UTF-8") || strings.Contains(lcAll, "UTF-8")
}
