package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/spaces-cli/internal/api"
	"github.com/yourusername/spaces-cli/internal/logging"
	"github.com/yourusername/spaces-cli/internal/mcpserver"
	"github.com/yourusername/spaces-cli/internal/models"
	"github.com/yourusername/spaces-cli/internal/output"
	"github.com/yourusername/spaces-cli/internal/refresh"
)

var (
	watchInterval time.Duration
	serveAddr     string
)

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// newRefresher wires a refresher over AeroSpace that persists every new
// tree and starts from the persisted one.
func newRefresher() *refresh.Refresher {
	store := newStore()
	r := refresh.New(newProvider(), logging.Logger)

	if tree, err := store.LoadTree(); err != nil {
		logging.Warn().Err(err).Msg("ignoring unreadable persisted tree")
	} else {
		r.Seed(tree)
	}

	r.OnUpdate(func(tree *models.Tree) {
		if err := store.Save(tree); err != nil {
			logging.Warn().Err(err).Msg("failed to persist tree")
		}
	})
	return r
}

// watchCmd reprints the tree whenever it changes
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the tree every time it changes",
	Long: `Refreshes every refresh.interval and reprints the tree when workspaces,
windows or focus change. With --remote, follows the server's stream instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		var last *models.Tree
		show := func(tree *models.Tree) {
			if last != nil && last.SameLayout(tree) {
				return
			}
			last = tree
			if jsonOutput {
				output.PrintJSON(os.Stdout, tree)
				return
			}
			infoColor.Printf("── %s ──\n", tree.FetchedAt.Format("15:04:05"))
			output.PrintTree(os.Stdout, tree, treeOptions())
		}

		if isRemote() {
			err := newClient().Watch(ctx, show)
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		r := newRefresher()
		updates := r.Subscribe()
		defer r.Unsubscribe(updates)

		go r.Run(ctx, cfg.RefreshInterval())

		for {
			select {
			case <-ctx.Done():
				return nil
			case tree := <-updates:
				show(tree)
			}
		}
	},
}

// serveCmd runs the HTTP API with a background refresh loop
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tree and focus commands over HTTP",
	Long: `Starts the HTTP API on server.addr and refreshes the tree every
refresh.interval. Focus commands are accepted immediately and run in the
background. Each new tree is saved so 'spaces list' can fall back to it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		r := newRefresher()
		srv := api.NewServer(r, newProvider(), logging.Logger, version)

		if !jsonOutput {
			successColor.Printf("✓ Serving on http://%s\n", cfg.Server.Addr)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.Start(gctx, cfg.Server.Addr)
		})
		g.Go(func() error {
			if err := r.Run(gctx, cfg.RefreshInterval()); err != nil && gctx.Err() == nil {
				return err
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			printError(err.Error())
			return err
		}
		return nil
	},
}

// mcpCmd serves MCP tools over stdio
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve spaces tools over MCP (stdio)",
	Long:  `Exposes list_spaces, focus_space, focus_window and activate_window to MCP clients over stdin/stdout.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := newProvider()
		s := mcpserver.New(newRefresher(), provider, version, logging.Logger)

		logging.Info().Msg("MCP server listening on stdio")
		if err := s.ServeStdio(); err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	},
}
