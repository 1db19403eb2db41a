package preview

import (
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Raiwe17/ProektSite/internal/events"
	"github.com/Raiwe17/ProektSite/internal/version"
)

// Metrics holds the preview server's Prometheus collectors on a private
// registry.
type Metrics struct {
	registry *prometheus.Registry
	start    time.Time

	sessions  prometheus.Gauge
	wsClients prometheus.Gauge
	inputs    *prometheus.CounterVec
	exports   prometheus.Counter

	mu       sync.RWMutex
	mqtt     func() bool
	postgres func() bool
}

// NewMetrics registers the collectors, labelled with site, instance and
// version.
func NewMetrics(site string) *Metrics {
	host, _ := os.Hostname()
	if host == "" {
		host = "unknown"
	}
	labels := prometheus.Labels{"site": site, "instance": host, "version": version.Version}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		start:    time.Now(),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "proektsite_sessions_active", Help: "Number of running preview sessions", ConstLabels: labels,
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "proektsite_ws_clients", Help: "Number of connected WebSocket clients", ConstLabels: labels,
		}),
		inputs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "proektsite_inputs_total", Help: "Inputs delivered to sessions, by source", ConstLabels: labels,
		}, []string{"source"}),
		exports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "proektsite_exports_total", Help: "Number of generated documents served", ConstLabels: labels,
		}),
	}

	m.registry.MustRegister(
		m.sessions, m.wsClients, m.inputs, m.exports,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "proektsite_uptime_seconds", Help: "Seconds since the preview server started", ConstLabels: labels,
		}, func() float64 { return time.Since(m.start).Seconds() }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "proektsite_events_total", Help: "Total number of events emitted since startup", ConstLabels: labels,
		}, func() float64 { return float64(events.TotalCount()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "proektsite_mqtt_connected", Help: "Whether the MQTT broker is connected (1) or not (0)", ConstLabels: labels,
		}, func() float64 { return m.probe(&m.mqtt) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "proektsite_postgres_connected", Help: "Whether PostgreSQL event logging is active (1) or not (0)", ConstLabels: labels,
		}, func() float64 { return m.probe(&m.postgres) }),
	)
	return m
}

// SetProbes installs the connectivity checks reported as gauges. Nil probes
// report 0.
func (m *Metrics) SetProbes(mqtt, postgres func() bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mqtt = mqtt
	m.postgres = postgres
}

func (m *Metrics) probe(fn *func() bool) float64 {
	m.mu.RLock()
	check := *fn
	m.mu.RUnlock()
	if check != nil && check() {
		return 1
	}
	return 0
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
