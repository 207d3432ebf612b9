package aerospace

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"

	"github.com/yourusername/spaces-cli/internal/models"
)

// ErrDecode wraps every payload that could not be parsed.
var ErrDecode = errors.New("cannot decode payload")

// flexString accepts a JSON string or number and keeps it as a string.
// Window ids are numeric in the tool's output but are keyed as strings.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*f = flexString(strconv.FormatInt(i, 10))
		return nil
	}
	*f = flexString(n.String())
	return nil
}

type rawSpace struct {
	Workspace flexString `json:"workspace"`
	ID        flexString `json:"id"`
}

type rawWindow struct {
	WindowID  flexString `json:"window-id"`
	AppName   string     `json:"app-name"`
	Title     string     `json:"window-title"`
	Workspace flexString `json:"workspace"`
}

// DecodeSpaces parses a workspace list payload.
func DecodeSpaces(data []byte) ([]models.Space, error) {
	var raw []rawSpace
	if err := decodeList(data, &raw); err != nil {
		return nil, err
	}

	spaces := make([]models.Space, 0, len(raw))
	for i, r := range raw {
		id := string(r.Workspace)
		if id == "" {
			id = string(r.ID)
		}
		if id == "" {
			return nil, errors.Wrapf(ErrDecode, "space %d has no identifier", i)
		}
		spaces = append(spaces, models.Space{ID: id})
	}
	return spaces, nil
}

// DecodeWindows parses a window list payload.
func DecodeWindows(data []byte) ([]models.Window, error) {
	var raw []rawWindow
	if err := decodeList(data, &raw); err != nil {
		return nil, err
	}

	windows := make([]models.Window, 0, len(raw))
	for i, r := range raw {
		if r.WindowID == "" {
			return nil, errors.Wrapf(ErrDecode, "window %d has no identifier", i)
		}
		windows = append(windows, models.Window{
			ID:        string(r.WindowID),
			AppName:   r.AppName,
			Title:     r.Title,
			Workspace: string(r.Workspace),
		})
	}
	return windows, nil
}

// DecodeFocusedSpace parses a focused-workspace payload. An empty list means
// no space is focused and returns nil without error.
func DecodeFocusedSpace(data []byte) (*models.Space, error) {
	spaces, err := DecodeSpaces(data)
	if err != nil || len(spaces) == 0 {
		return nil, err
	}
	return &spaces[0], nil
}

// DecodeFocusedWindow parses a focused-window payload. An empty list means no
// window is focused and returns nil without error.
func DecodeFocusedWindow(data []byte) (*models.Window, error) {
	windows, err := DecodeWindows(data)
	if err != nil || len(windows) == 0 {
		return nil, err
	}
	return &windows[0], nil
}

func decodeList(data []byte, v interface{}) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.Wrap(ErrDecode, "empty payload")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(ErrDecode, "%v", err)
	}
	return nil
}
