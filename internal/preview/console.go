package preview

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Raiwe17/ProektSite/internal/events"
	"github.com/Raiwe17/ProektSite/internal/runtime"
)

// Number of recent events sent when a console connects.
const recentEventsCount = 50

// consoleEvents streams the event bus to an operator console. A new console
// gets the recent events first; one reconnecting with ?since=<seq> gets only
// what it missed. ?session=<id> narrows the stream to one session.
func (s *Server) consoleEvents(w http.ResponseWriter, r *http.Request) {
	var filters []events.Filter
	if sid := r.URL.Query().Get("session"); sid != "" {
		filters = append(filters, events.ForSession(sid))
	}
	var since uint64
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid since", http.StatusBadRequest)
			return
		}
		since = n
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("console upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Subscribe before reading the backlog so nothing falls in between.
	sub := events.Subscribe(filters...)
	defer events.Unsubscribe(sub)
	s.metrics.wsClients.Inc()
	defer s.metrics.wsClients.Dec()

	backlog := events.RecentEvents(recentEventsCount, filters...)
	if since > 0 {
		backlog = events.EventsSince(since, filters...)
	}
	var last uint64
	for _, e := range backlog {
		last = e.Seq
		if err := writeEvent(conn, e); err != nil {
			return
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		case e, ok := <-sub:
			if !ok {
				return
			}
			if e.Seq <= last {
				continue
			}
			if err := writeEvent(conn, e); err != nil {
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

func writeEvent(conn *websocket.Conn, e events.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return nil
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

type NavigateRequest struct {
	PageID string `json:"page_id"`
}

type OperatorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// navigateSession moves a live session to another page.
func (s *Server) navigateSession(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, OperatorResponse{Error: "invalid JSON"})
		return
	}
	if req.PageID == "" {
		writeJSON(w, http.StatusBadRequest, OperatorResponse{Error: "page_id required"})
		return
	}
	if s.project.Page(req.PageID) == nil {
		writeJSON(w, http.StatusNotFound, OperatorResponse{Error: "page not found"})
		return
	}
	if !s.deliver(chi.URLParam(r, "id"), runtime.Input{Kind: runtime.NavigateTo, PageID: req.PageID}, "operator") {
		writeJSON(w, http.StatusNotFound, OperatorResponse{Error: "session not live"})
		return
	}
	writeJSON(w, http.StatusOK, OperatorResponse{OK: true})
}

func (s *Server) console(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(consoleHTML))
}

const consoleHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>ProektSite Console</title>
<style>
* { box-sizing: border-box; margin: 0; padding: 0; }
body { font-family: monospace; background: #111827; color: #e5e7eb; height: 100vh; display: flex; flex-direction: column; }
header { background: #1f2937; padding: 10px 16px; display: flex; justify-content: space-between; align-items: center; border-bottom: 1px solid #374151; }
header h1 { font-size: 15px; font-weight: normal; }
#status { padding: 3px 8px; border-radius: 4px; font-size: 12px; }
#status.up { background: #14532d; color: #86efac; }
#status.down { background: #7f1d1d; color: #fca5a5; }
.controls { background: #1f2937; padding: 8px 16px; display: flex; gap: 8px; border-bottom: 1px solid #374151; }
.controls input { background: #111827; border: 1px solid #374151; border-radius: 4px; padding: 5px 8px; color: #e5e7eb; font-family: monospace; width: 300px; }
.controls button { background: #2563eb; border: none; border-radius: 4px; padding: 5px 10px; color: #fff; font-family: monospace; cursor: pointer; }
#result { font-size: 12px; align-self: center; }
#events { flex: 1; overflow-y: auto; padding: 8px; }
.event { padding: 6px 10px; margin-bottom: 3px; background: #1f2937; border-left: 3px solid #374151; border-radius: 3px; font-size: 12px; display: flex; gap: 10px; }
.event.level-error { border-left-color: #dc2626; }
.event.level-warning { border-left-color: #d97706; }
.event.scope-action { border-left-color: #7c3aed; }
.event.scope-session { border-left-color: #059669; }
.event.scope-bridge { border-left-color: #0891b2; }
.ts { color: #6b7280; min-width: 90px; }
.name { color: #60a5fa; min-width: 150px; }
.fields { color: #9ca3af; }
</style>
</head>
<body>
<header><h1>ProektSite Console</h1><span id="status" class="down">disconnected</span></header>
<div class="controls">
  <input id="session" placeholder="session id (filters the stream)">
  <input id="page" placeholder="page id">
  <button id="go">navigate</button>
  <span id="result"></span>
</div>
<div id="events"></div>
<script>
(function () {
  var list = document.getElementById('events');
  var status = document.getElementById('status');
  var sessionInput = document.getElementById('session');
  var lastSeq = 0;
  var ws = null;

  function add(e) {
    if (e.seq) lastSeq = e.seq;
    var row = document.createElement('div');
    var scope = (e.event || '').split('.')[0];
    row.className = 'event level-' + e.level + ' scope-' + scope;
    var ts = document.createElement('span'); ts.className = 'ts'; ts.textContent = (e.ts || '').slice(11, 23);
    var name = document.createElement('span'); name.className = 'name'; name.textContent = e.event;
    var fields = document.createElement('span'); fields.className = 'fields';
    fields.textContent = (e.msg ? e.msg + ' ' : '') + (e.fields ? JSON.stringify(e.fields) : '');
    row.appendChild(ts); row.appendChild(name); row.appendChild(fields);
    list.insertBefore(row, list.firstChild);
    while (list.childNodes.length > 500) list.removeChild(list.lastChild);
  }

  function connect() {
    var q = [];
    var sid = sessionInput.value.trim();
    if (sid) q.push('session=' + encodeURIComponent(sid));
    if (lastSeq) q.push('since=' + lastSeq);
    var sock = new WebSocket((location.protocol === 'https:' ? 'wss:' : 'ws:') + '//' + location.host +
      '/console/ws' + (q.length ? '?' + q.join('&') : ''));
    ws = sock;
    sock.onopen = function () { status.className = 'up'; status.textContent = 'connected'; };
    sock.onmessage = function (ev) { add(JSON.parse(ev.data)); };
    sock.onclose = function () {
      if (ws !== sock) return;
      status.className = 'down'; status.textContent = 'disconnected';
      setTimeout(connect, 2000);
    };
  }
  connect();

  sessionInput.addEventListener('change', function () {
    lastSeq = 0;
    while (list.firstChild) list.removeChild(list.firstChild);
    var old = ws;
    connect();
    if (old) old.close();
  });

  var result = document.getElementById('result');
  document.getElementById('go').addEventListener('click', function () {
    var sid = sessionInput.value.trim();
    var page = document.getElementById('page').value.trim();
    if (!sid || !page) { result.textContent = 'session and page required'; return; }
    fetch('/sessions/' + encodeURIComponent(sid) + '/navigate', {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify({ page_id: page })
    })
      .then(function (res) { return res.json(); })
      .then(function (data) { result.textContent = data.ok ? 'sent' : data.error; })
      .catch(function () { result.textContent = 'network error'; });
  });
})();
</script>
</body>
</html>`
