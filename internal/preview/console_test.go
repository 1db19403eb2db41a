package preview

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Raiwe17/ProektSite/internal/events"
)

func TestConsolePage(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp, body := get(t, ts.URL+"/console")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "/console/ws") {
		t.Error("console should connect to the event stream")
	}
}

func TestConsoleStreamsEvents(t *testing.T) {
	events.Clear()
	events.Emit("info", "project.loaded", "", map[string]interface{}{"path": "a.yaml"})
	_, ts := newTestServer(t, Options{})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/console/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	// Sessions closing after earlier tests may still emit, so skip to the
	// event we expect.
	readUntil := func(name string) {
		t.Helper()
		for i := 0; i < 20; i++ {
			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			_, data, err := conn.ReadMessage()
			if err != nil {
				t.Fatalf("failed to read event: %v", err)
			}
			var e events.Event
			if err := json.Unmarshal(data, &e); err != nil {
				t.Fatalf("failed to unmarshal event: %v", err)
			}
			if e.Name == name {
				return
			}
		}
		t.Fatalf("never received %s", name)
	}

	readUntil("project.loaded")

	waitFor(t, time.Second, func() bool { return events.SubscriberCount() > 0 }, "console to subscribe")
	events.Emit("info", "project.exported", "", nil)
	readUntil("project.exported")
}

func TestConsoleResumeAndFilter(t *testing.T) {
	events.Clear()
	events.Emit("info", "session.started", "", map[string]interface{}{"session_id": "a"})
	events.Emit("info", "session.started", "", map[string]interface{}{"session_id": "b"})
	seq := events.RecentEvents(1)[0].Seq
	events.Emit("info", "session.closed", "", map[string]interface{}{"session_id": "a"})
	_, ts := newTestServer(t, Options{})

	base := "ws" + strings.TrimPrefix(ts.URL, "http") + "/console/ws"
	conn, _, err := websocket.DefaultDialer.Dial(base+"?session=a&since="+strconv.FormatUint(seq, 10), nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read event: %v", err)
	}
	var e events.Event
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("failed to unmarshal event: %v", err)
	}
	if e.Name != "session.closed" || e.Session() != "a" || e.Seq != seq+1 {
		t.Errorf("expected the missed session.closed for a, got %+v", e)
	}

	resp, _ := get(t, ts.URL+"/console/ws?since=x")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for bad since, got %d", resp.StatusCode)
	}
}

func TestNavigateSession(t *testing.T) {
	srv, ts := newTestServer(t, Options{})

	post := func(id, body string) (int, OperatorResponse) {
		t.Helper()
		resp, err := http.Post(ts.URL+"/sessions/"+id+"/navigate", "application/json", bytes.NewBufferString(body))
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		defer resp.Body.Close()
		var out OperatorResponse
		json.NewDecoder(resp.Body).Decode(&out)
		return resp.StatusCode, out
	}

	if code, _ := post("missing", `{"page_id":"two"}`); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown session, got %d", code)
	}
	if code, _ := post("missing", `{`); code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad JSON, got %d", code)
	}

	conn := dial(t, ts, "")
	defer conn.Close()
	hello := readMessage(t, conn)
	waitFor(t, time.Second, func() bool { return len(srv.Sessions()) == 1 }, "session to go live")

	if code, out := post(hello.Session, `{"page_id":"nowhere"}`); code != http.StatusNotFound || out.Error != "page not found" {
		t.Errorf("expected page not found, got %d %+v", code, out)
	}
	code, out := post(hello.Session, `{"page_id":"two"}`)
	if code != http.StatusOK || !out.OK {
		t.Fatalf("expected ok, got %d %+v", code, out)
	}
	readUntilShown(t, conn, "two")
}
