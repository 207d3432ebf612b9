package models

import (
	"encoding/json"
	"time"
)

// Error codes carried in ErrorInfo.Code
const (
	CodeBadRequest  = 400
	CodeNotFound    = 404
	CodeInternal    = 500
	CodeUnavailable = 503
)

// Response is the envelope for every API reply
type Response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ErrorInfo      `json:"error,omitempty"`
}

// ErrorInfo represents an error in a response
type ErrorInfo struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Event is pushed to stream subscribers whenever a new tree is available
type Event struct {
	EventType string    `json:"eventType"`
	Tree      *Tree     `json:"tree"`
	Timestamp time.Time `json:"timestamp"`
}

// Accepted is the result of a fire-and-forget command
type Accepted struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

// NewResponse builds a successful response envelope
func NewResponse(id string, result interface{}) (*Response, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &Response{ID: id, Result: data}, nil
}

// NewErrorResponse builds an error response envelope
func NewErrorResponse(id string, code int, msg string) *Response {
	return &Response{
		ID:    id,
		Error: &ErrorInfo{Code: code, Message: msg},
	}
}

// NewTreeEvent wraps a tree for the stream
func NewTreeEvent(t *Tree) *Event {
	return &Event{
		EventType: "tree",
		Tree:      t,
		Timestamp: time.Now(),
	}
}

// IsError returns true if the response contains an error
func (r *Response) IsError() bool {
	return r.Error != nil
}

// GetError returns the error message if present
func (r *Response) GetError() string {
	if r.Error != nil {
		return r.Error.Message
	}
	return ""
}

// Decode unmarshals the result payload into v
func (r *Response) Decode(v interface{}) error {
	if len(r.Result) == 0 {
		return nil
	}
	return json.Unmarshal(r.Result, v)
}

// Health is the result of the health endpoint
type Health struct {
	Status    string    `json:"status"`
	Version   string    `json:"version,omitempty"`
	HasData   bool      `json:"hasData"`
	FetchedAt time.Time `json:"fetchedAt,omitempty"`
	LastError string    `json:"lastError,omitempty"`
}
