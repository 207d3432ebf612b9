package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/spaces-cli/internal/models"
)

// RequestIDHeader matches the header the API server echoes back
const RequestIDHeader = "X-Request-ID"

// Connection sends envelope requests to a spaces API server over HTTP
type Connection struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// NewConnection creates a new connection instance
func NewConnection(baseURL string, timeout time.Duration) *Connection {
	return &Connection{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: timeout,
	}
}

// BaseURL returns the server address requests are sent to
func (c *Connection) BaseURL() string {
	return c.baseURL
}

// SendRequest sends a request and waits for the envelope response. Error
// envelopes are returned as a response, not as an error.
func (c *Connection) SendRequest(ctx context.Context, method, path string) (*models.Response, error) {
	// Apply timeout if not already set
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	reqID := uuid.New().String()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	var env models.Response
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to parse response (HTTP %d): %w", resp.StatusCode, err)
	}

	// Verify response ID matches
	if env.ID != reqID {
		return nil, fmt.Errorf("response ID mismatch: expected %s, got %s", reqID, env.ID)
	}

	return &env, nil
}
