package aerospace

import (
	"testing"

	"github.com/pkg/errors"
)

func TestDecodeSpaces(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
		hasError bool
	}{
		{"workspace key", `[{"workspace":"1"},{"workspace":"web"}]`, []string{"1", "web"}, false},
		{"id key", `[{"id":"1"},{"id":"2"}]`, []string{"1", "2"}, false},
		{"numeric workspace", `[{"workspace":3}]`, []string{"3"}, false},
		{"extra fields ignored", `[{"workspace":"1","monitor-name":"Built-in"}]`, []string{"1"}, false},
		{"empty list", `[]`, []string{}, false},
		{"missing identifier", `[{"name":"x"}]`, nil, true},
		{"malformed", `[{"workspace":`, nil, true},
		{"object instead of list", `{"workspace":"1"}`, nil, true},
		{"empty payload", ``, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeSpaces([]byte(tt.input))
			if tt.hasError {
				if err == nil {
					t.Fatalf("DecodeSpaces(%q) expected error, got nil", tt.input)
				}
				if !errors.Is(err, ErrDecode) {
					t.Errorf("DecodeSpaces(%q) error = %v, want ErrDecode", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeSpaces(%q) unexpected error: %v", tt.input, err)
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("DecodeSpaces(%q) returned %d spaces, want %d", tt.input, len(got), len(tt.expected))
			}
			for i, id := range tt.expected {
				if got[i].ID != id {
					t.Errorf("space[%d].ID = %q, want %q", i, got[i].ID, id)
				}
				if got[i].IsFocused {
					t.Errorf("space[%d] should not be focused after decode", i)
				}
			}
		})
	}
}

func TestDecodeWindows(t *testing.T) {
	input := `[
		{"window-id": 101, "app-name": "Safari", "window-title": "Docs", "workspace": "1"},
		{"window-id": "102", "app-name": "Terminal", "window-title": "", "workspace": ""},
		{"window-id": 103, "window-title": "Untitled"}
	]`

	got, err := DecodeWindows([]byte(input))
	if err != nil {
		t.Fatalf("DecodeWindows() error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("DecodeWindows() returned %d windows, want 3", len(got))
	}

	if got[0].ID != "101" || got[0].AppName != "Safari" || got[0].Title != "Docs" || got[0].Workspace != "1" {
		t.Errorf("window[0] = %+v", got[0])
	}
	if got[1].ID != "102" || got[1].Workspace != "" {
		t.Errorf("window[1] = %+v", got[1])
	}
	if got[2].AppName != "" || got[2].Workspace != "" {
		t.Errorf("window[2] should have no app and no workspace, got %+v", got[2])
	}
}

func TestDecodeWindows_Errors(t *testing.T) {
	tests := []string{
		`not json`,
		`[{"app-name":"Safari"}]`,
		`[{"window-id": true}]`,
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			if _, err := DecodeWindows([]byte(input)); err == nil {
				t.Errorf("DecodeWindows(%q) expected error, got nil", input)
			}
		})
	}
}

func TestDecodeFocused(t *testing.T) {
	space, err := DecodeFocusedSpace([]byte(`[{"workspace":"2"}]`))
	if err != nil {
		t.Fatalf("DecodeFocusedSpace() error: %v", err)
	}
	if space == nil || space.ID != "2" {
		t.Errorf("DecodeFocusedSpace() = %+v, want id 2", space)
	}

	space, err = DecodeFocusedSpace([]byte(`[]`))
	if err != nil || space != nil {
		t.Errorf("DecodeFocusedSpace([]) = %+v, %v; want nil, nil", space, err)
	}

	window, err := DecodeFocusedWindow([]byte(`[{"window-id":7,"app-name":"Finder"}]`))
	if err != nil {
		t.Fatalf("DecodeFocusedWindow() error: %v", err)
	}
	if window == nil || window.ID != "7" {
		t.Errorf("DecodeFocusedWindow() = %+v, want id 7", window)
	}

	window, err = DecodeFocusedWindow([]byte(`[]`))
	if err != nil || window != nil {
		t.Errorf("DecodeFocusedWindow([]) = %+v, %v; want nil, nil", window, err)
	}

	if _, err := DecodeFocusedWindow([]byte(`{`)); err == nil {
		t.Error("DecodeFocusedWindow() expected error for malformed payload")
	}
}
