// Package client talks to a running `spaces serve` instance.
package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yourusername/spaces-cli/internal/models"
)

const (
	DefaultBaseURL = "http://127.0.0.1:7788"
	DefaultTimeout = 10 * time.Second
)

// Error is an error envelope returned by the server
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

// Client is the spaces API client
type Client struct {
	conn *Connection
}

// NewClient creates a new API client. A bare host:port is treated as http.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		conn: NewConnection(baseURL, timeout),
	}
}

// request is a helper to send a request and decode the result into out
func (c *Client) request(ctx context.Context, method, path string, out interface{}) error {
	resp, err := c.conn.SendRequest(ctx, method, path)
	if err != nil {
		return err
	}

	if resp.IsError() {
		return &Error{Code: resp.Error.Code, Message: resp.Error.Message}
	}

	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

// Ping checks the server is up and reports its data status
func (c *Client) Ping(ctx context.Context) (*models.Health, error) {
	var health models.Health
	if err := c.request(ctx, "GET", "/api/health", &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Spaces returns the server's current tree
func (c *Client) Spaces(ctx context.Context) (*models.Tree, error) {
	var tree models.Tree
	if err := c.request(ctx, "GET", "/api/spaces", &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}

// Refresh forces the server to fetch a new tree
func (c *Client) Refresh(ctx context.Context) (*models.Tree, error) {
	var tree models.Tree
	if err := c.request(ctx, "POST", "/api/refresh", &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}

// FocusSpace asks the server to switch to a space
func (c *Client) FocusSpace(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("space id is required")
	}
	return c.command(ctx, "/api/spaces/"+url.PathEscape(id)+"/focus")
}

// FocusWindow asks the server to focus a window
func (c *Client) FocusWindow(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("window id is required")
	}
	return c.command(ctx, "/api/windows/"+url.PathEscape(id)+"/focus")
}

// Activate asks the server to switch to a space and then focus a window on it
func (c *Client) Activate(ctx context.Context, spaceID, windowID string) error {
	if spaceID == "" || windowID == "" {
		return fmt.Errorf("space and window ids are required")
	}
	return c.command(ctx, "/api/spaces/"+url.PathEscape(spaceID)+"/windows/"+url.PathEscape(windowID)+"/activate")
}

func (c *Client) command(ctx context.Context, path string) error {
	var acc models.Accepted
	return c.request(ctx, "POST", path, &acc)
}

// Watch streams trees from the server until ctx is cancelled or the
// connection drops, calling fn for each one.
func (c *Client) Watch(ctx context.Context, fn func(*models.Tree)) error {
	wsURL := "ws" + strings.TrimPrefix(c.conn.BaseURL(), "http") + "/api/stream"

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var ev models.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("stream closed: %w", err)
		}
		if ev.Tree != nil {
			fn(ev.Tree)
		}
	}
}
