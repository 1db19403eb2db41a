package preview

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type webhookRecorder struct {
	mu       sync.Mutex
	payloads []AlertPayload
}

func (w *webhookRecorder) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	var p AlertPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err == nil {
		w.mu.Lock()
		w.payloads = append(w.payloads, p)
		w.mu.Unlock()
	}
	rw.WriteHeader(http.StatusNoContent)
}

func (w *webhookRecorder) received() []AlertPayload {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]AlertPayload(nil), w.payloads...)
}

func TestAlerterDebouncesOutage(t *testing.T) {
	rec := &webhookRecorder{}
	hook := httptest.NewServer(rec)
	defer hook.Close()

	up := true
	a := NewAlerter("demo", hook.URL, nil)
	a.Watch(AlertMQTTDisconnected, SeverityWarning, "MQTT broker disconnected", 30*time.Second, func() bool { return up })

	start := time.Unix(1000, 0)
	a.Check(start)

	up = false
	a.Check(start.Add(time.Second))
	a.Check(start.Add(20 * time.Second))
	a.Wait()
	if got := rec.received(); len(got) != 0 {
		t.Fatalf("alert sent before the delay: %+v", got)
	}

	a.Check(start.Add(31 * time.Second))
	a.Check(start.Add(40 * time.Second))
	a.Wait()
	got := rec.received()
	if len(got) != 1 {
		t.Fatalf("expected one outage alert, got %d", len(got))
	}
	if got[0].Event != AlertMQTTDisconnected || got[0].Severity != SeverityWarning || got[0].Site != "demo" {
		t.Errorf("unexpected payload: %+v", got[0])
	}

	up = true
	a.Check(start.Add(50 * time.Second))
	a.Wait()
	got = rec.received()
	if len(got) != 2 || got[1].Severity != SeverityInfo {
		t.Errorf("expected a recovery alert, got %+v", got)
	}
}

func TestAlerterFromEnv(t *testing.T) {
	t.Setenv("PROEKTSITE_ALERT_WEBHOOK_URL", "")
	t.Setenv("PROEKTSITE_MQTT_ALERT_DELAY", "2s")
	t.Setenv("PROEKTSITE_POSTGRES_ALERT_DELAY", "bogus")

	a := AlerterFromEnv("demo", nil, func() bool { return true }, nil)
	if len(a.outages) != 1 {
		t.Fatalf("expected only the mqtt watch, got %d", len(a.outages))
	}
	if a.outages[0].delay != 2*time.Second {
		t.Errorf("delay = %v, want 2s", a.outages[0].delay)
	}
	if d := envDuration("PROEKTSITE_POSTGRES_ALERT_DELAY", 5*time.Second); d != 5*time.Second {
		t.Errorf("invalid duration should fall back, got %v", d)
	}
}
