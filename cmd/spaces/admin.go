package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	spacesConfig "github.com/yourusername/spaces-cli/internal/config"
	"github.com/yourusername/spaces-cli/internal/output"
)

// MARK: - Config Commands

// configCmd is the parent command for config subcommands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for showing, creating and validating the spaces configuration.`,
}

// configShowCmd shows the effective config
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration (file, environment and flags merged)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			return output.PrintJSON(os.Stdout, cfg)
		}
		data, err := cfg.ToYAML()
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

// configValidateCmd validates config file
var configValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) > 0 {
			path = args[0]
		}

		loaded, err := spacesConfig.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		successColor.Println("✓ Configuration is valid")
		fmt.Printf("  AeroSpace: %s\n", loaded.Aerospace.Path)
		fmt.Printf("  Query timeout: %s\n", loaded.QueryTimeout())
		fmt.Printf("  Orphan focus: %s\n", loaded.Aerospace.OrphanFocus)
		fmt.Printf("  Server: %s\n", loaded.Server.Addr)

		return nil
	},
}

// configInitCmd creates default config
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = spacesConfig.GetConfigPath()
		}

		// Check if file exists
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s", path)
		}

		data, err := spacesConfig.Default().ToYAML()
		if err != nil {
			return err
		}
		content := "# spaces configuration\n" +
			"# Every key can be overridden with SPACES_<SECTION>_<KEY>, e.g. SPACES_AEROSPACE_PATH.\n" +
			string(data)

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}

		successColor.Printf("✓ Created default config at: %s\n", path)
		return nil
	},
}

// MARK: - State Commands

// stateCmd is the parent command for state subcommands
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Manage the persisted last-known tree",
	Long:  `Commands for showing and resetting the tree saved after each successful refresh.`,
}

// stateShowCmd shows the persisted tree
var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the persisted tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore()
		snap, err := store.Load()
		if err != nil {
			return fmt.Errorf("failed to load state: %w", err)
		}
		if snap == nil {
			fmt.Printf("No state saved at %s\n", store.Path())
			return nil
		}

		if jsonOutput {
			return output.PrintJSON(os.Stdout, snap)
		}

		keyColor.Print("State Version: ")
		fmt.Printf("%d\n", snap.Version)
		keyColor.Print("Last Updated: ")
		fmt.Printf("%s\n", snap.LastUpdated.Format("2006-01-02 15:04:05"))
		keyColor.Print("Workspaces: ")
		fmt.Printf("%d\n", len(snap.Tree.Spaces))
		keyColor.Print("Windows: ")
		fmt.Printf("%d\n", snap.Tree.WindowCount())
		fmt.Println()

		output.PrintTree(os.Stdout, snap.Tree, treeOptions())
		return nil
	},
}

// stateResetCmd removes the persisted tree
var stateResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the persisted tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newStore().Reset(); err != nil {
			return fmt.Errorf("failed to reset state: %w", err)
		}

		successColor.Println("✓ State has been reset")
		return nil
	},
}
