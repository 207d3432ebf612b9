package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/yourusername/spaces-cli/internal/models"
)

type fakeTrees struct {
	mu      sync.Mutex
	current *models.Tree
	next    *models.Tree
	err     error
	subs    []chan *models.Tree
}

func (f *fakeTrees) Current() *models.Tree {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeTrees) Refresh(ctx context.Context) (*models.Tree, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.current = f.next
	return f.next, nil
}

func (f *fakeTrees) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeTrees) Subscribe() <-chan *models.Tree {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan *models.Tree, 4)
	f.subs = append(f.subs, ch)
	return ch
}

func (f *fakeTrees) Unsubscribe(ch <-chan *models.Tree) {}

func (f *fakeTrees) publish(t *models.Tree) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		ch <- t
	}
}

func (f *fakeTrees) subscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

type fakeCommander struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeCommander) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeCommander) FocusSpace(ctx context.Context, id string) error {
	return f.record("space:" + id)
}

func (f *fakeCommander) FocusWindow(ctx context.Context, id string) error {
	return f.record("window:" + id)
}

func (f *fakeCommander) Activate(ctx context.Context, spaceID, windowID string) error {
	return f.record("activate:" + spaceID + "/" + windowID)
}

func (f *fakeCommander) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func sampleTree() *models.Tree {
	return models.NewTree("c1", []models.Space{
		{ID: "1", IsFocused: true, Windows: []models.Window{{ID: "100", AppName: "Safari", Workspace: "1", IsFocused: true}}},
	})
}

func newTestServer(trees *fakeTrees, cmds *fakeCommander) (*Server, *httptest.Server) {
	s := NewServer(trees, cmds, zerolog.Nop(), "test")
	return s, httptest.NewServer(s.Handler())
}

func decodeEnvelope(t *testing.T, resp *http.Response) *models.Response {
	t.Helper()
	defer resp.Body.Close()
	var env models.Response
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return &env
}

func TestHealth(t *testing.T) {
	trees := &fakeTrees{current: sampleTree()}
	_, ts := newTestServer(trees, &fakeCommander{})
	defer ts.Close()

	req, _ := http.NewRequest("GET", ts.URL+"/api/health", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Header.Get(RequestIDHeader) != "req-1" {
		t.Errorf("response request id = %q, want req-1", resp.Header.Get(RequestIDHeader))
	}

	env := decodeEnvelope(t, resp)
	if env.ID != "req-1" {
		t.Errorf("envelope id = %q, want req-1", env.ID)
	}
	var health models.Health
	if err := env.Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" || !health.HasData || health.Version != "test" {
		t.Errorf("health = %+v", health)
	}
}

func TestGetSpaces(t *testing.T) {
	t.Run("serves current tree", func(t *testing.T) {
		trees := &fakeTrees{current: sampleTree()}
		_, ts := newTestServer(trees, &fakeCommander{})
		defer ts.Close()

		resp, err := http.Get(ts.URL + "/api/spaces")
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
		env := decodeEnvelope(t, resp)
		if env.ID == "" {
			t.Error("server should generate a request id")
		}
		var tree models.Tree
		if err := env.Decode(&tree); err != nil {
			t.Fatal(err)
		}
		if len(tree.Spaces) != 1 || tree.Spaces[0].Windows[0].ID != "100" {
			t.Errorf("tree = %+v", tree)
		}
	})

	t.Run("refreshes when empty", func(t *testing.T) {
		trees := &fakeTrees{next: sampleTree()}
		_, ts := newTestServer(trees, &fakeCommander{})
		defer ts.Close()

		resp, err := http.Get(ts.URL + "/api/spaces")
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
		resp.Body.Close()
	})

	t.Run("unavailable without data", func(t *testing.T) {
		trees := &fakeTrees{err: errors.New("no data")}
		_, ts := newTestServer(trees, &fakeCommander{})
		defer ts.Close()

		resp, err := http.Get(ts.URL + "/api/spaces")
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", resp.StatusCode)
		}
		env := decodeEnvelope(t, resp)
		if !env.IsError() || env.Error.Code != models.CodeUnavailable {
			t.Errorf("envelope = %+v, want unavailable error", env)
		}
	})
}

func TestRefresh(t *testing.T) {
	trees := &fakeTrees{next: sampleTree()}
	_, ts := newTestServer(trees, &fakeCommander{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/refresh", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	trees.mu.Lock()
	trees.err = errors.New("aerospace gone")
	trees.mu.Unlock()

	resp, err = http.Post(ts.URL+"/api/refresh", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusServiceUnavailable || env.GetError() != "aerospace gone" {
		t.Errorf("status = %d, error = %q", resp.StatusCode, env.GetError())
	}
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"focus space", "/api/spaces/3/focus", "space:3"},
		{"focus window", "/api/windows/42/focus", "window:42"},
		{"activate", "/api/spaces/2/windows/42/activate", "activate:2/42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &fakeCommander{}
			s, ts := newTestServer(&fakeTrees{}, cmds)
			defer ts.Close()

			resp, err := http.Post(ts.URL+tt.path, "application/json", nil)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != http.StatusAccepted {
				t.Errorf("status = %d, want 202", resp.StatusCode)
			}
			env := decodeEnvelope(t, resp)
			var acc models.Accepted
			if err := env.Decode(&acc); err != nil {
				t.Fatal(err)
			}
			if acc.Command == "" || len(acc.Args) == 0 {
				t.Errorf("accepted = %+v", acc)
			}

			s.Wait()
			if got := cmds.recorded(); len(got) != 1 || got[0] != tt.want {
				t.Errorf("calls = %v, want [%s]", got, tt.want)
			}
		})
	}
}

func TestCommands_FailureStillAccepted(t *testing.T) {
	cmds := &fakeCommander{err: errors.New("exit status 1")}
	s, ts := newTestServer(&fakeTrees{}, cmds)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/windows/1/focus", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	s.Wait()

	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("status = %d, want 202", resp.StatusCode)
	}
}

func TestCommands_WrongMethod(t *testing.T) {
	_, ts := newTestServer(&fakeTrees{}, &fakeCommander{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/spaces/1/focus")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestStream(t *testing.T) {
	trees := &fakeTrees{current: sampleTree()}
	_, ts := newTestServer(trees, &fakeCommander{})
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first models.Event
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read initial event: %v", err)
	}
	if first.EventType != "tree" || first.Tree.CycleID != "c1" {
		t.Errorf("initial event = %+v", first)
	}

	// Wait for the handler to subscribe before publishing
	deadline := time.Now().Add(time.Second)
	for trees.subscriberCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	next := models.NewTree("c2", nil)
	trees.publish(next)

	var second models.Event
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("read update event: %v", err)
	}
	if second.Tree.CycleID != "c2" {
		t.Errorf("update event cycle = %q, want c2", second.Tree.CycleID)
	}
}
