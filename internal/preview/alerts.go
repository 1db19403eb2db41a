package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/Raiwe17/ProektSite/internal/logging"
)

// Alert severity levels
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Alert event types
const (
	AlertMQTTDisconnected    = "mqtt_disconnected"
	AlertPostgresUnavailable = "postgres_unavailable"
)

// AlertPayload is the JSON body posted to the webhook.
type AlertPayload struct {
	Site      string                 `json:"site"`
	Event     string                 `json:"event"`
	Timestamp string                 `json:"timestamp"`
	Severity  string                 `json:"severity"`
	Message   string                 `json:"message,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// outage debounces one dependency: it alerts once the dependency has been
// down for delay, and again when it recovers.
type outage struct {
	event    string
	severity string
	message  string
	delay    time.Duration
	probe    func() bool

	since time.Time
	sent  bool
}

// Alerter posts dependency outages to a webhook. Without a webhook URL alerts
// are only logged.
type Alerter struct {
	site    string
	webhook string
	client  *http.Client
	logger  *slog.Logger

	mu      sync.Mutex
	outages []*outage
	wg      sync.WaitGroup
}

// NewAlerter creates an alerter for site posting to webhook.
func NewAlerter(site, webhook string, logger *slog.Logger) *Alerter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Alerter{
		site:    site,
		webhook: webhook,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// AlerterFromEnv reads PROEKTSITE_ALERT_WEBHOOK_URL and installs the MQTT and
// Postgres watches. PROEKTSITE_MQTT_ALERT_DELAY and
// PROEKTSITE_POSTGRES_ALERT_DELAY override the default delays of 30s and 5s.
// Nil probes are not watched.
func AlerterFromEnv(site string, logger *slog.Logger, mqttUp, postgresUp func() bool) *Alerter {
	a := NewAlerter(site, os.Getenv("PROEKTSITE_ALERT_WEBHOOK_URL"), logger)
	if mqttUp != nil {
		a.Watch(AlertMQTTDisconnected, SeverityWarning, "MQTT broker disconnected",
			envDuration("PROEKTSITE_MQTT_ALERT_DELAY", 30*time.Second), mqttUp)
	}
	if postgresUp != nil {
		a.Watch(AlertPostgresUnavailable, SeverityCritical, "PostgreSQL unavailable",
			envDuration("PROEKTSITE_POSTGRES_ALERT_DELAY", 5*time.Second), postgresUp)
	}
	return a
}

func envDuration(name string, def time.Duration) time.Duration {
	if v := os.Getenv(name); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// Watch adds a dependency checked by Check.
func (a *Alerter) Watch(event, severity, message string, delay time.Duration, probe func() bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.outages = append(a.outages, &outage{
		event:    event,
		severity: severity,
		message:  message,
		delay:    delay,
		probe:    probe,
	})
}

// Check probes every watched dependency once.
func (a *Alerter) Check(now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, o := range a.outages {
		if o.probe() {
			if o.sent {
				a.send(o.event, SeverityInfo, o.message+": restored", map[string]interface{}{
					"recovered_at": now.UTC().Format(time.RFC3339),
				})
			}
			o.since, o.sent = time.Time{}, false
			continue
		}

		if o.since.IsZero() {
			o.since = now
		}
		if down := now.Sub(o.since); !o.sent && down >= o.delay {
			o.sent = true
			a.send(o.event, o.severity, o.message, map[string]interface{}{
				"disconnected_since":   o.since.UTC().Format(time.RFC3339),
				"disconnected_seconds": int(down.Seconds()),
			})
		}
	}
}

// Run checks at interval until ctx is done, then waits for pending posts.
func (a *Alerter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			a.wg.Wait()
			return
		case now := <-ticker.C:
			a.Check(now)
		}
	}
}

// Wait blocks until in-flight webhook posts finish.
func (a *Alerter) Wait() {
	a.wg.Wait()
}

func (a *Alerter) send(event, severity, message string, details map[string]interface{}) {
	if a.webhook == "" {
		a.logger.Warn("alert", "event", event, "severity", severity, "msg", message, "details", details)
		return
	}
	payload := AlertPayload{
		Site:      a.site,
		Event:     event,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Severity:  severity,
		Message:   message,
		Details:   details,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.post(payload)
	}()
}

func (a *Alerter) post(payload AlertPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		a.logger.Error("alert: marshal payload", "error", err)
		return
	}
	resp, err := a.client.Post(a.webhook, "application/json", bytes.NewReader(body))
	if err != nil {
		a.logger.Error("alert: webhook POST failed", "error", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		a.logger.Error("alert: webhook rejected", "status", resp.StatusCode)
	}
}
