package mqtt

import (
	"sync"
	"time"

	"github.com/Raiwe17/ProektSite/internal/events"
)

// Monitor marks kiosks disconnected when their heartbeats stop.
type Monitor struct {
	registry  *KioskRegistry
	tolerance float64 // heartbeats missed before a kiosk counts as gone
	now       func() time.Time
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewMonitor creates a monitor over registry. A tolerance of 1 or less
// defaults to 2, i.e. one missed heartbeat is forgiven.
func NewMonitor(registry *KioskRegistry, tolerance float64) *Monitor {
	if tolerance <= 1.0 {
		tolerance = 2.0
	}
	return &Monitor{
		registry:  registry,
		tolerance: tolerance,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the background health check loop.
func (m *Monitor) Start(checkInterval time.Duration) {
	m.wg.Add(1)
	go m.loop(checkInterval)
}

// Stop stops the loop and waits for it to exit. Safe to call twice.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	m.wg.Wait()
}

func (m *Monitor) loop(interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.Check()
		}
	}
}

// Check expires silent kiosks and emits bridge.disconnected for each.
func (m *Monitor) Check() []Kiosk {
	expired := m.registry.Expire(m.now(), m.tolerance)
	for _, k := range expired {
		events.Emit("warning", "bridge.disconnected", "heartbeat timeout", map[string]interface{}{
			"kiosk_id":   k.ID,
			"session_id": k.SessionID,
			"last_seen":  k.LastSeen.Format(time.RFC3339),
		})
	}
	return expired
}
