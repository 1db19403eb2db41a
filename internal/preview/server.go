// Package preview serves a project over HTTP. Each browser tab gets its own
// server-side runtime; pointer input arrives over a WebSocket and document
// writes are streamed back as patches.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Raiwe17/ProektSite/internal/events"
	"github.com/Raiwe17/ProektSite/internal/logging"
	"github.com/Raiwe17/ProektSite/internal/project"
	"github.com/Raiwe17/ProektSite/internal/runtime"
	"github.com/Raiwe17/ProektSite/internal/session"
	"github.com/Raiwe17/ProektSite/internal/site"
)

// Options configures a Server. Zero values get defaults.
type Options struct {
	Title      string
	NoTailwind bool
	FPS        int
	Store      session.Store
	Auth       *Auth
	Metrics    *Metrics
	Logger     *slog.Logger
	Clock      runtime.Clock
}

// Server is the preview HTTP server.
type Server struct {
	project *project.Project
	opts    Options
	logger  *slog.Logger
	metrics *Metrics
	store   session.Store

	mu       sync.Mutex
	sessions map[string]*liveSession
	wg       sync.WaitGroup
}

// NewServer creates a server for p.
func NewServer(p *project.Project, opts Options) *Server {
	if opts.FPS <= 0 {
		opts.FPS = runtime.DefaultFPS
	}
	if opts.Store == nil {
		opts.Store = session.NewMemoryStore()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics("default")
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = runtime.SystemClock
	}
	return &Server{
		project:  p,
		opts:     opts,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		store:    opts.Store,
		sessions: make(map[string]*liveSession),
	}
}

// Handler returns the router. /health and /metrics are always open; the
// event log, session list and operator console need the admin role when auth
// is enabled.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.opts.Auth.Require(RoleAdmin, RoleViewer))
		r.Get("/", s.index)
		r.Get("/export", s.export)
		r.Get("/project", s.projectJSON)
		r.Get("/ws", s.serveWS)
	})
	r.Group(func(r chi.Router) {
		r.Use(s.opts.Auth.Require(RoleAdmin))
		r.Get("/events", s.events)
		r.Get("/sessions", s.listSessions)
		r.Post("/sessions/{id}/navigate", s.navigateSession)
		r.Get("/console", s.console)
		r.Get("/console/ws", s.consoleEvents)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then closes live
// sessions and shuts the listener down.
func (s *Server) ListenAndServe(ctx context.Context, addr string, tlsCfg *TLSConfig) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	if tlsCfg.Enabled() {
		cfg, err := tlsCfg.Load()
		if err != nil {
			return err
		}
		srv.TLSConfig = cfg
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview listening", "addr", addr, "tls", tlsCfg.Enabled())
		var err error
		if srv.TLSConfig != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.CloseSessions()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.wg.Wait()
	return nil
}

// Deliver queues input for a live session. It implements the MQTT bridge
// sink.
func (s *Server) Deliver(sessionID string, in runtime.Input) bool {
	return s.deliver(sessionID, in, "mqtt")
}

func (s *Server) deliver(sessionID string, in runtime.Input, source string) bool {
	s.mu.Lock()
	ls := s.sessions[sessionID]
	s.mu.Unlock()
	if ls == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if !ls.rt.Send(ctx, in) {
		return false
	}
	s.metrics.inputs.WithLabelValues(source).Inc()
	return true
}

// Sessions returns the ids of live sessions, sorted.
func (s *Server) Sessions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Hostname  string `json:"hostname"`
	Sessions  int    `json:"sessions"`
	Timestamp string `json:"ts"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	host, _ := os.Hostname()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   "preview",
		Hostname:  host,
		Sessions:  len(s.Sessions()),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	s.render(w, site.Options{
		Title:      s.opts.Title,
		NoTailwind: s.opts.NoTailwind,
		NoRuntime:  true,
		Scripts:    []string{liveClient},
	})
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="index.html"`)
	}
	if s.render(w, site.Options{Title: s.opts.Title, NoTailwind: s.opts.NoTailwind}) {
		s.metrics.exports.Inc()
		events.Emit("info", "project.exported", "", map[string]interface{}{"target": "http"})
	}
}

func (s *Server) render(w http.ResponseWriter, opts site.Options) bool {
	out, err := site.Generate(s.project, opts)
	if err != nil {
		s.logger.Error("generate page", "error", err)
		http.Error(w, "generate failed", http.StatusInternalServerError)
		return false
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(out))
	return true
}

func (s *Server) projectJSON(w http.ResponseWriter, r *http.Request) {
	b, err := project.Marshal(s.project, project.FormatJSON)
	if err != nil {
		s.logger.Error("encode project", "error", err)
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
}

// events returns recent events from the in-memory buffer, or from Postgres
// when a session filter is given and event logging is enabled.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	if sid := r.URL.Query().Get("session"); sid != "" {
		pg := events.GetPostgresClient()
		if pg == nil {
			writeJSON(w, http.StatusOK, events.RecentEvents(limit, events.ForSession(sid)))
			return
		}
		rows, err := pg.QuerySession(r.Context(), sid, limit)
		if err != nil {
			s.logger.Error("query events", "error", err)
			http.Error(w, "query failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, rows)
		return
	}
	writeJSON(w, http.StatusOK, events.RecentEvents(limit))
}

type sessionsResponse struct {
	Live   []string `json:"live"`
	Stored []string `json:"stored"`
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	stored, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("list sessions", "error", err)
		http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
		return
	}
	if stored == nil {
		stored = []string{}
	}
	writeJSON(w, http.StatusOK, sessionsResponse{Live: s.Sessions(), Stored: stored})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

var errSessionBusy = errors.New("session already connected")

func sessionError(id string, err error) error {
	return fmt.Errorf("session %s: %w", id, err)
}
