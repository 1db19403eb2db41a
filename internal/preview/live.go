package preview

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Raiwe17/ProektSite/internal/events"
	"github.com/Raiwe17/ProektSite/internal/runtime"
	"github.com/Raiwe17/ProektSite/internal/session"
)

// message is a server-to-browser frame.
type message struct {
	Type    string          `json:"type"`
	Session string          `json:"session,omitempty"`
	Page    string          `json:"page,omitempty"`
	Patches []runtime.Patch `json:"patches,omitempty"`
	Message string          `json:"message,omitempty"`
	URL     string          `json:"url,omitempty"`
	NewTab  bool            `json:"newTab,omitempty"`
}

// liveSession is one running runtime bound to a browser connection.
type liveSession struct {
	id     string
	page   string // active page when the session went live
	rt     *runtime.Runtime
	doc    *runtime.MemoryDocument
	out    chan message
	cancel context.CancelFunc
	done   chan struct{}
}

// flush runs on the runtime goroutine after every tick and input. The
// runtime is the only producer on out, so a free slot stays free until the
// send. When the writer lags, patches stay queued in the document.
func (ls *liveSession) flush() {
	if len(ls.out) == cap(ls.out) {
		return
	}
	if p := ls.doc.Drain(); len(p) > 0 {
		ls.out <- message{Type: "patch", Patches: p}
	}
}

// sessionHost forwards links and alerts to the browser.
type sessionHost struct {
	out chan message
}

func (h sessionHost) OpenLink(url string, newTab bool) {
	select {
	case h.out <- message{Type: "link", URL: url, NewTab: newTab}:
	default:
	}
}

func (h sessionHost) Alert(msg string) {
	select {
	case h.out <- message{Type: "alert", Message: msg}:
	default:
	}
}

// open starts a runtime for a connection. A requested id that names a stored
// session resumes it; anything else starts a fresh session.
func (s *Server) open(ctx context.Context, requested string) (*liveSession, bool, error) {
	id, resumed := uuid.NewString(), false
	var saved runtime.State
	if _, err := uuid.Parse(requested); err == nil {
		st, err := s.store.Load(ctx, requested)
		switch {
		case err == nil:
			id, saved, resumed = requested, st, true
		case errors.Is(err, session.ErrSessionNotFound):
		default:
			return nil, false, sessionError(requested, err)
		}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	if _, busy := s.sessions[id]; busy {
		s.mu.Unlock()
		cancel()
		return nil, false, sessionError(id, errSessionBusy)
	}
	out := make(chan message, 64)
	doc := runtime.NewMemoryDocumentFor(s.project)
	ls := &liveSession{id: id, doc: doc, out: out, cancel: cancel, done: make(chan struct{})}
	ls.rt = runtime.New(s.project, doc,
		runtime.WithSession(id),
		runtime.WithHost(sessionHost{out: out}),
		runtime.WithLogger(s.logger.With("session_id", id)),
		runtime.WithFPS(s.opts.FPS),
		runtime.WithClock(s.opts.Clock),
		runtime.WithTickHook(ls.flush),
	)
	s.sessions[id] = ls
	s.mu.Unlock()

	if resumed {
		ls.rt.Restore(saved)
	}
	// The runtime belongs to its goroutine from here on.
	ls.page = ls.rt.ActivePage()

	go func() {
		defer close(ls.done)
		if err := ls.rt.Run(runCtx); err != nil {
			s.logger.Error("runtime stopped", "session_id", id, "error", err)
		}
	}()

	s.metrics.sessions.Inc()
	name := "session.started"
	if resumed {
		name = "session.resumed"
	}
	events.Emit("info", name, "", map[string]interface{}{
		"session_id": id,
		"page_id":    ls.page,
	})
	return ls, resumed, nil
}

// close stops the runtime and saves its state.
func (s *Server) close(ls *liveSession) {
	ls.cancel()
	<-ls.done

	// Run has returned, so this goroutine now owns the runtime.
	state := ls.rt.Snapshot()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.Save(ctx, ls.id, state); err != nil {
		s.logger.Error("save session", "session_id", ls.id, "error", err)
		events.Emit("error", "system.error", "session save failed", map[string]interface{}{
			"session_id": ls.id,
			"error":      err.Error(),
		})
	}

	s.mu.Lock()
	delete(s.sessions, ls.id)
	s.mu.Unlock()
	s.metrics.sessions.Dec()

	events.Emit("info", "session.closed", "", map[string]interface{}{
		"session_id": ls.id,
		"page_id":    state.ActivePage,
	})
}

// CloseSessions stops every live runtime. Their connections close and save
// on their own.
func (s *Server) CloseSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ls := range s.sessions {
		ls.cancel()
	}
}
