package aerospace

// Query names used in logs and errors
const (
	QuerySpaces        = "spaces"
	QueryWindows       = "windows"
	QueryFocusedSpace  = "focused-space"
	QueryFocusedWindow = "focused-window"
)

// windowFormat asks the tool to include the fields the decoder reads.
const windowFormat = "%{window-id} %{app-name} %{window-title} %{workspace}"

func allSpacesArgs() []string {
	return []string{"list-workspaces", "--all", "--json"}
}

func allWindowsArgs() []string {
	return []string{
		"list-windows", "--all", "--json",
		"--format", windowFormat,
		"--sort-by", "dfs-index",
	}
}

func focusedSpaceArgs() []string {
	return []string{"list-workspaces", "--focused", "--json"}
}

func focusedWindowArgs() []string {
	return []string{"list-windows", "--focused", "--json"}
}

func focusSpaceArgs(id string) []string {
	return []string{"workspace", id}
}

func focusWindowArgs(id string) []string {
	return []string{"focus", "--window-id", id}
}
