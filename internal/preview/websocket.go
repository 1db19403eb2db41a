package preview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Raiwe17/ProektSite/internal/runtime"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 54 * time.Second

	// closeSessionBusy tells the client to drop its stored session id.
	closeSessionBusy = 4409
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// clientMessage is a browser-to-server frame.
type clientMessage struct {
	Type string `json:"type"`
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
	Page string `json:"page,omitempty"`
}

// serveWS binds a connection to a live session.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ls, _, err := s.open(r.Context(), r.URL.Query().Get("session"))
	if err != nil {
		code, text := websocket.CloseInternalServerErr, "session unavailable"
		if errors.Is(err, errSessionBusy) {
			code, text = closeSessionBusy, "session in use"
		}
		s.logger.Warn("ws session rejected", "error", err)
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(writeWait))
		return
	}
	s.wg.Add(1)
	defer s.wg.Done()
	defer s.close(ls)

	s.metrics.wsClients.Inc()
	defer s.metrics.wsClients.Dec()

	if err := s.write(conn, message{Type: "hello", Session: ls.id, Page: ls.page}); err != nil {
		return
	}

	// Reader: input, pongs and close frames.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			s.handleClient(ls, data)
		}
	}()

	// Writer: patches, links, alerts and pings.
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return

		case <-ls.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), time.Now().Add(writeWait))
			return

		case msg := <-ls.out:
			if err := s.write(conn, msg); err != nil {
				s.logger.Warn("ws write failed", "session_id", ls.id, "error", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) write(conn *websocket.Conn, msg message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Server) handleClient(ls *liveSession, data []byte) {
	var m clientMessage
	if err := json.Unmarshal(data, &m); err != nil || m.Type != "input" {
		s.logger.Debug("ignoring client message", "session_id", ls.id)
		return
	}
	kind, err := runtime.ParseInputKind(m.Kind)
	if err != nil {
		s.logger.Debug("ignoring client input", "session_id", ls.id, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if ls.rt.Send(ctx, runtime.Input{Kind: kind, ElementID: m.ID, PageID: m.Page}) {
		s.metrics.inputs.WithLabelValues("ws").Inc()
	}
}
