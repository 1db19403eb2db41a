package mqtt

import (
	"testing"
	"time"
)

func TestMonitorCheck(t *testing.T) {
	r := NewKioskRegistry()
	start := time.Unix(1000, 0)
	r.Register(announce("k1", "s1", 1), start)

	m := NewMonitor(r, 0)
	if m.tolerance != 2.0 {
		t.Errorf("expected default tolerance 2, got %v", m.tolerance)
	}

	m.now = func() time.Time { return start.Add(time.Second) }
	if got := m.Check(); len(got) != 0 {
		t.Errorf("kiosk within tolerance expired: %+v", got)
	}

	m.now = func() time.Time { return start.Add(3 * time.Second) }
	got := m.Check()
	if len(got) != 1 || got[0].ID != "k1" || got[0].SessionID != "s1" {
		t.Errorf("expected k1 to expire, got %+v", got)
	}
}

func TestMonitorStartStop(t *testing.T) {
	m := NewMonitor(NewKioskRegistry(), 3)
	m.Start(5 * time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	m.Stop()
	m.Stop()
}
