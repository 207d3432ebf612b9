// Package mcpserver exposes the space tree and focus commands as MCP tools
// so agents can inspect and drive the window manager.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/spaces-cli/internal/models"
)

// Trees is the tree source the tools read from
type Trees interface {
	Refresh(ctx context.Context) (*models.Tree, error)
	Current() *models.Tree
}

// Commander dispatches focus commands
type Commander interface {
	FocusSpace(ctx context.Context, id string) error
	FocusWindow(ctx context.Context, id string) error
	Activate(ctx context.Context, spaceID, windowID string) error
}

// Server wraps the MCP server with the tree source and dispatcher.
type Server struct {
	trees Trees
	cmds  Commander
	log   zerolog.Logger
	mcp   *server.MCPServer
}

// New creates and configures an MCP server with all spaces tools.
func New(trees Trees, cmds Commander, version string, log zerolog.Logger) *Server {
	s := &Server{
		trees: trees,
		cmds:  cmds,
		log:   log.With().Str("component", "mcp").Logger(),
	}

	s.mcp = server.NewMCPServer(
		"spaces",
		version,
	)

	s.registerTools()
	return s
}

// ServeStdio serves MCP over stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("list_spaces",
			mcp.WithDescription("List AeroSpace workspaces with their windows. Only non-empty or focused workspaces are included; focused entries are marked."),
		),
		s.handleListSpaces,
	)

	s.mcp.AddTool(
		mcp.NewTool("focus_space",
			mcp.WithDescription("Switch to an AeroSpace workspace"),
			mcp.WithString("id", mcp.Description("Workspace name, e.g. '1' or 'web'"), mcp.Required()),
		),
		s.handleFocusSpace,
	)

	s.mcp.AddTool(
		mcp.NewTool("focus_window",
			mcp.WithDescription("Focus a window by its AeroSpace window id"),
			mcp.WithString("id", mcp.Description("Window id from list_spaces"), mcp.Required()),
		),
		s.handleFocusWindow,
	)

	s.mcp.AddTool(
		mcp.NewTool("activate_window",
			mcp.WithDescription("Switch to a workspace, then focus a window on it"),
			mcp.WithString("space", mcp.Description("Workspace name"), mcp.Required()),
			mcp.WithString("window", mcp.Description("Window id"), mcp.Required()),
		),
		s.handleActivate,
	)
}

// commandResult is the YAML body returned by command tools
type commandResult struct {
	OK      bool     `yaml:"ok"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Error   string   `yaml:"error,omitempty"`
}

func resultToText(result commandResult) string {
	b, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Sprintf("ok: %v\ncommand: %s\nerror: %s", result.OK, result.Command, result.Error)
	}
	return string(b)
}

func (s *Server) handleListSpaces(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tree, err := s.trees.Refresh(ctx)
	stale := false
	if err != nil {
		tree = s.trees.Current()
		if tree == nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		stale = true
		s.log.Warn().Err(err).Msg("refresh failed, serving last good tree")
	}

	b, err := yaml.Marshal(tree.Spaces)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text := string(b)
	if stale {
		text = fmt.Sprintf("# stale: last refresh failed, showing tree from %s\n%s", tree.FetchedAt.Format("15:04:05"), text)
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleFocusSpace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.runCommand("focus_space", []string{id}, s.cmds.FocusSpace(ctx, id)), nil
}

func (s *Server) handleFocusWindow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.runCommand("focus_window", []string{id}, s.cmds.FocusWindow(ctx, id)), nil
}

func (s *Server) handleActivate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spaceID, err := request.RequireString("space")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	windowID, err := request.RequireString("window")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.runCommand("activate_window", []string{spaceID, windowID}, s.cmds.Activate(ctx, spaceID, windowID)), nil
}

func (s *Server) runCommand(name string, args []string, err error) *mcp.CallToolResult {
	result := commandResult{OK: err == nil, Command: name, Args: args}
	if err != nil {
		result.Error = err.Error()
		s.log.Warn().Err(err).Str("command", name).Msg("command failed")
		return mcp.NewToolResultError(resultToText(result))
	}
	return mcp.NewToolResultText(resultToText(result))
}
