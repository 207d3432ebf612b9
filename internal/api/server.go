// Package api exposes the reconciled space tree and the focus commands over
// HTTP, with a WebSocket stream of tree updates.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/yourusername/spaces-cli/internal/models"
)

// RequestIDHeader carries the envelope id in both directions
const RequestIDHeader = "X-Request-ID"

// DefaultCommandTimeout bounds a fire-and-forget command
const DefaultCommandTimeout = 5 * time.Second

// Trees is the tree source the server reads from
type Trees interface {
	Current() *models.Tree
	Refresh(ctx context.Context) (*models.Tree, error)
	LastError() error
	Subscribe() <-chan *models.Tree
	Unsubscribe(ch <-chan *models.Tree)
}

// Commander dispatches focus commands
type Commander interface {
	FocusSpace(ctx context.Context, id string) error
	FocusWindow(ctx context.Context, id string) error
	Activate(ctx context.Context, spaceID, windowID string) error
}

// Server represents the HTTP API server
type Server struct {
	router   *mux.Router
	trees    Trees
	cmds     Commander
	upgrader websocket.Upgrader
	log      zerolog.Logger
	version  string

	cmdTimeout time.Duration
	inflight   sync.WaitGroup
}

// NewServer creates a new API server
func NewServer(trees Trees, cmds Commander, log zerolog.Logger, version string) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		trees:      trees,
		cmds:       cmds,
		log:        log.With().Str("component", "api").Logger(),
		version:    version,
		cmdTimeout: DefaultCommandTimeout,
		upgrader: websocket.Upgrader{
			// Local tool; browser dashboards on other ports may connect
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.withRequestID)

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Tree
	api.HandleFunc("/spaces", s.handleGetSpaces).Methods("GET")
	api.HandleFunc("/refresh", s.handleRefresh).Methods("POST")
	api.HandleFunc("/stream", s.handleStream)

	// Commands
	api.HandleFunc("/spaces/{id}/focus", s.handleFocusSpace).Methods("POST")
	api.HandleFunc("/windows/{id}/focus", s.handleFocusWindow).Methods("POST")
	api.HandleFunc("/spaces/{space}/windows/{window}/activate", s.handleActivate).Methods("POST")
}

// Handler returns the root handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("starting API server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.Wait()
	return nil
}

// Wait blocks until dispatched commands have finished
func (s *Server) Wait() {
	s.inflight.Wait()
}

type ctxKey struct{}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		s.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Str("request_id", id).Msg("request")
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return id
}

// HTTP Handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status:  "ok",
		Version: s.version,
	}
	if tree := s.trees.Current(); tree != nil {
		health.HasData = true
		health.FetchedAt = tree.FetchedAt
	}
	if err := s.trees.LastError(); err != nil {
		health.LastError = err.Error()
	}
	s.writeResult(w, r, http.StatusOK, health)
}

func (s *Server) handleGetSpaces(w http.ResponseWriter, r *http.Request) {
	tree := s.trees.Current()
	if tree == nil {
		var err error
		tree, err = s.trees.Refresh(r.Context())
		if err != nil {
			s.writeError(w, r, http.StatusServiceUnavailable, models.CodeUnavailable, err.Error())
			return
		}
	}
	s.writeResult(w, r, http.StatusOK, tree)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	tree, err := s.trees.Refresh(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusServiceUnavailable, models.CodeUnavailable, err.Error())
		return
	}
	s.writeResult(w, r, http.StatusOK, tree)
}

func (s *Server) handleFocusSpace(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.dispatch(w, r, "focusSpace", []string{id}, func(ctx context.Context) error {
		return s.cmds.FocusSpace(ctx, id)
	})
}

func (s *Server) handleFocusWindow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.dispatch(w, r, "focusWindow", []string{id}, func(ctx context.Context) error {
		return s.cmds.FocusWindow(ctx, id)
	})
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	spaceID, windowID := vars["space"], vars["window"]
	s.dispatch(w, r, "activate", []string{spaceID, windowID}, func(ctx context.Context) error {
		return s.cmds.Activate(ctx, spaceID, windowID)
	})
}

// dispatch acknowledges a command immediately and runs it in the background.
// Failures are logged, never reported to the caller.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, name string, args []string, run func(ctx context.Context) error) {
	reqID := requestID(r)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.cmdTimeout)
		defer cancel()
		if err := run(ctx); err != nil {
			s.log.Warn().Err(err).Str("command", name).Strs("args", args).Str("request_id", reqID).Msg("command failed")
		}
	}()

	s.writeResult(w, r, http.StatusAccepted, models.Accepted{Command: name, Args: args})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	updates := s.trees.Subscribe()
	defer s.trees.Unsubscribe(updates)

	// Send initial tree
	if current := s.trees.Current(); current != nil {
		if err := conn.WriteJSON(models.NewTreeEvent(current)); err != nil {
			s.log.Debug().Err(err).Msg("websocket write failed")
			return
		}
	}

	// Reader notices the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case tree, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(models.NewTreeEvent(tree)); err != nil {
				s.log.Debug().Err(err).Msg("websocket write failed")
				return
			}
		}
	}
}

func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, status int, result interface{}) {
	resp, err := models.NewResponse(requestID(r), result)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, models.CodeInternal, err.Error())
		return
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status, code int, msg string) {
	s.writeJSON(w, status, models.NewErrorResponse(requestID(r), code, msg))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debug().Err(err).Msg("failed to write response")
	}
}
