package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yourusername/spaces-cli/internal/aerospace"
	"github.com/yourusername/spaces-cli/internal/client"
	spacesFocus "github.com/yourusername/spaces-cli/internal/focus"
	spacesConfig "github.com/yourusername/spaces-cli/internal/config"
	"github.com/yourusername/spaces-cli/internal/logging"
	"github.com/yourusername/spaces-cli/internal/models"
	"github.com/yourusername/spaces-cli/internal/output"
	spacesState "github.com/yourusername/spaces-cli/internal/state"
)

const version = "0.1.0"

var (
	configPath    string
	aerospacePath string
	remoteURL     string
	logLevel      string
	timeout       time.Duration
	jsonOutput    bool
	noColor       bool
	debugMode     bool

	// Resolved in PersistentPreRunE
	cfg *spacesConfig.Config

	// Color functions
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	keyColor     = color.New(color.FgYellow)
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "spaces",
	Short: "AeroSpace workspace and window browser",
	Long: `Spaces queries the AeroSpace window manager, merges its workspaces and
windows into a single tree, and switches focus between them.

It can run one-shot from the shell, watch for changes, serve the tree over
HTTP and WebSocket, or expose it to agents over MCP.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// setup loads configuration, applies flag and environment overrides, and
// starts logging. It runs before every command.
func setup(cmd *cobra.Command, args []string) error {
	if noColor {
		color.NoColor = true
	}

	loaded, err := spacesConfig.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	v := spacesConfig.NewViper()
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	if err := loaded.ApplyOverrides(v); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = loaded

	if err := logging.Init(logging.Options{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Console: cfg.Logging.Console,
	}); err != nil {
		// Logging is best effort; the command still runs
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
	}
	if debugMode {
		logging.SetDebug(true)
	}

	logging.Debug().Str("command", cmd.CommandPath()).Str("aerospace", cfg.Aerospace.Path).Msg("starting")
	return nil
}

// bindFlags maps command-line flags onto configuration keys. Flags that the
// running command does not define are skipped.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	bindings := map[string]string{
		"aerospace.path":         "aerospace",
		"aerospace.querytimeout": "timeout",
		"logging.level":          "log-level",
		"server.addr":            "addr",
		"refresh.interval":       "interval",
	}
	for key, name := range bindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}

// backend is what the one-shot commands need, served either by AeroSpace
// directly or by a remote `spaces serve`.
type backend interface {
	Spaces(ctx context.Context) (*models.Tree, error)
	FocusSpace(ctx context.Context, id string) error
	FocusWindow(ctx context.Context, id string) error
	Activate(ctx context.Context, spaceID, windowID string) error
}

// localBackend talks to AeroSpace through its CLI
type localBackend struct {
	*aerospace.Provider
}

func (b localBackend) Spaces(ctx context.Context) (*models.Tree, error) {
	return b.SpacesWithWindows(ctx)
}

func newProvider() *aerospace.Provider {
	return aerospace.NewProvider(cfg.Aerospace.Path, aerospace.Options{
		Timeout:     cfg.QueryTimeout(),
		FocusDelay:  cfg.FocusDelay(),
		OrphanFocus: aerospace.OrphanFocus(cfg.Aerospace.OrphanFocus),
	}, logging.Logger)
}

func newClient() *client.Client {
	t := client.DefaultTimeout
	if rootCmd.PersistentFlags().Changed("timeout") {
		t = timeout
	}
	url := remoteURL
	if url == "" {
		url = cfg.Server.Addr
	}
	return client.NewClient(url, t)
}

func isRemote() bool {
	return remoteURL != ""
}

func newBackend() backend {
	if isRemote() {
		return newClient()
	}
	return localBackend{newProvider()}
}

func newStore() *spacesState.Store {
	return spacesState.NewStore("")
}

// MARK: - List

var (
	listFormat  string
	listTable   bool
	listYAML    bool
	listWindows bool
	listASCII   bool
	listNoIDs   bool
)

// listCmd prints the reconciled tree
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces and their windows",
	Long: `Runs one refresh cycle and prints the workspaces that have windows or
focus, each with its windows.

If AeroSpace cannot be reached, the last tree saved by a previous run is
shown instead, with a warning.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := resolveFormat()
		if err != nil {
			return err
		}

		ctx := context.Background()
		tree, err := newBackend().Spaces(ctx)
		if err != nil {
			if !isRemote() {
				tree, err = fallbackTree(newStore(), err)
			}
			if err != nil {
				printError(err.Error())
				return err
			}
		} else if !isRemote() {
			if err := newStore().Save(tree); err != nil {
				logging.Warn().Err(err).Msg("failed to persist tree")
			}
		}

		return printTree(tree, format)
	},
}

// fallbackTree returns the persisted tree when a refresh produced no data.
// Any other failure, or an empty store, returns refreshErr.
func fallbackTree(store *spacesState.Store, refreshErr error) (*models.Tree, error) {
	if !aerospace.IsNoData(refreshErr) {
		return nil, refreshErr
	}

	snap, err := store.Load()
	if err != nil {
		logging.Warn().Err(err).Msg("failed to load persisted tree")
	}
	if snap == nil {
		return nil, refreshErr
	}

	printWarning(fmt.Sprintf("AeroSpace unavailable (%v); showing state from %s ago",
		refreshErr, snap.Age().Round(time.Second)))
	return snap.Tree, nil
}

func resolveFormat() (output.Format, error) {
	switch {
	case jsonOutput:
		return output.FormatJSON, nil
	case listYAML:
		return output.FormatYAML, nil
	case listTable:
		return output.FormatTable, nil
	}
	return output.ParseFormat(listFormat)
}

func printTree(tree *models.Tree, format output.Format) error {
	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, tree)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, tree)
	case output.FormatTable:
		if listWindows {
			output.PrintWindowsTable(os.Stdout, tree)
		} else {
			output.PrintSpacesTable(os.Stdout, tree)
		}
		return nil
	default:
		output.PrintTree(os.Stdout, tree, treeOptions())
		return nil
	}
}

// treeOptions builds options from flags
func treeOptions() output.TreeOptions {
	opts := output.DefaultTreeOptions()
	if listASCII {
		opts.UseUnicode = false
	}
	if listNoIDs {
		opts.ShowIDs = false
	}
	return opts
}

// MARK: - Focus Commands

// focusCmd is the parent command for focus subcommands
var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Switch focus to a workspace or window",
}

var focusSpaceCmd = &cobra.Command{
	Use:   "space <id>",
	Short: "Switch to a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newBackend().FocusSpace(context.Background(), args[0]); err != nil {
			printError(err.Error())
			return err
		}
		if !jsonOutput {
			successColor.Printf("✓ Switched to workspace %s\n", args[0])
		}
		return nil
	},
}

var focusWindowCmd = &cobra.Command{
	Use:   "window <id>",
	Short: "Focus a window by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newBackend().FocusWindow(context.Background(), args[0]); err != nil {
			printError(err.Error())
			return err
		}
		if !jsonOutput {
			successColor.Printf("✓ Focused window %s\n", args[0])
		}
		return nil
	},
}

var focusSpaces bool

// focusCycleHelper moves focus one step through the current tree
func focusCycleHelper(forward bool) error {
	ctx := context.Background()
	b := newBackend()

	tree, err := b.Spaces(ctx)
	if err != nil {
		printError(err.Error())
		return err
	}

	if focusSpaces {
		id, err := spacesFocus.CycleSpace(tree, forward)
		if err != nil {
			return err
		}
		if err := b.FocusSpace(ctx, id); err != nil {
			printError(err.Error())
			return err
		}
		if !jsonOutput {
			successColor.Printf("✓ Switched to workspace %s\n", id)
		}
		return nil
	}

	target, err := spacesFocus.CycleWindow(tree, forward)
	if err != nil {
		return err
	}
	if err := b.FocusWindow(ctx, target.WindowID); err != nil {
		printError(err.Error())
		return err
	}
	if !jsonOutput {
		successColor.Printf("✓ Focused window %s\n", target.WindowID)
	}
	return nil
}

var focusNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Focus the next window in the focused workspace (or next workspace with --spaces)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return focusCycleHelper(true)
	},
}

var focusPrevCmd = &cobra.Command{
	Use:   "prev",
	Short: "Focus the previous window in the focused workspace (or previous workspace with --spaces)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return focusCycleHelper(false)
	},
}

// activateCmd switches workspace, waits, then focuses the window
var activateCmd = &cobra.Command{
	Use:   "activate <space> <window>",
	Short: "Switch to a workspace and focus a window on it",
	Long: `Switches to the workspace, waits for the switch to settle (aerospace.focusDelay),
then focuses the window. The window is focused even if the workspace switch fails.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newBackend().Activate(context.Background(), args[0], args[1]); err != nil {
			printError(err.Error())
			return err
		}
		if !jsonOutput {
			successColor.Printf("✓ Activated window %s on workspace %s\n", args[1], args[0])
		}
		return nil
	},
}

// pingCmd tests server connectivity
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test connection to a running spaces server",
	Long:  `Calls the health endpoint of --remote (or server.addr) and reports response time.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()

		start := time.Now()
		health, err := c.Ping(context.Background())
		elapsed := time.Since(start)

		if err != nil {
			printError(fmt.Sprintf("Ping failed: %v", err))
			return err
		}

		if jsonOutput {
			return output.PrintJSON(os.Stdout, health)
		}

		successColor.Println("✓ Pong received")
		fmt.Printf("Response time: %v\n", elapsed)
		keyColor.Print("Version: ")
		fmt.Println(health.Version)
		keyColor.Print("Has data: ")
		fmt.Println(health.HasData)
		if !health.FetchedAt.IsZero() {
			keyColor.Print("Last refresh: ")
			fmt.Println(health.FetchedAt.Format(time.RFC3339))
		}
		if health.LastError != "" {
			keyColor.Print("Last error: ")
			fmt.Println(health.LastError)
		}

		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/spaces/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&aerospacePath, "aerospace", "", "Path to the aerospace binary")
	rootCmd.PersistentFlags().StringVar(&remoteURL, "remote", "", "Use a running `spaces serve` at this address instead of AeroSpace")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Per-query timeout (remote: request timeout)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	// Add top-level commands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(activateCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add focus commands
	rootCmd.AddCommand(focusCmd)
	focusCmd.AddCommand(focusSpaceCmd)
	focusCmd.AddCommand(focusWindowCmd)
	focusCmd.AddCommand(focusNextCmd)
	focusCmd.AddCommand(focusPrevCmd)

	// Add focus cycle flags
	focusNextCmd.Flags().BoolVar(&focusSpaces, "spaces", false, "Cycle workspaces instead of windows")
	focusPrevCmd.Flags().BoolVar(&focusSpaces, "spaces", false, "Cycle workspaces instead of windows")

	// Add config commands
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configInitCmd)

	// Add state commands
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateResetCmd)

	// Add list flags
	listCmd.Flags().StringVar(&listFormat, "format", "tree", "Output format: tree, table, json, yaml")
	listCmd.Flags().BoolVar(&listTable, "table", false, "Shorthand for --format table")
	listCmd.Flags().BoolVar(&listYAML, "yaml", false, "Shorthand for --format yaml")
	listCmd.Flags().BoolVar(&listWindows, "windows", false, "Table mode: one row per window")
	listCmd.Flags().BoolVar(&listASCII, "ascii", false, "Force ASCII tree (no Unicode)")
	listCmd.Flags().BoolVar(&listNoIDs, "no-ids", false, "Hide window IDs in the tree")

	// Add watch and serve flags
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Refresh interval (default refresh.interval)")
	watchCmd.Flags().BoolVar(&listASCII, "ascii", false, "Force ASCII tree (no Unicode)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default server.addr)")
	serveCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Refresh interval (default refresh.interval)")
}

func main() {
	defer logging.Close()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Helper functions

func printError(msg string) {
	if noColor {
		fmt.Fprintln(os.Stderr, "Error:", msg)
	} else {
		errorColor.Fprint(os.Stderr, "✗ Error: ")
		fmt.Fprintln(os.Stderr, msg)
	}
}

func printWarning(msg string) {
	if noColor {
		fmt.Fprintln(os.Stderr, "Warning:", msg)
	} else {
		warnColor.Fprint(os.Stderr, "! Warning: ")
		fmt.Fprintln(os.Stderr, msg)
	}
}
