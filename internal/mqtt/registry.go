package mqtt

import (
	"sort"
	"sync"
	"time"
)

// Kiosk is a display bound to a preview session.
type Kiosk struct {
	ID           string
	Name         string
	SessionID    string
	HeartbeatSec int
	LastSeen     time.Time
	Connected    bool
}

// KioskRegistry maps kiosk ids to their sessions.
type KioskRegistry struct {
	mu     sync.RWMutex
	kiosks map[string]*Kiosk
}

// NewKioskRegistry creates an empty registry.
func NewKioskRegistry() *KioskRegistry {
	return &KioskRegistry{kiosks: make(map[string]*Kiosk)}
}

// Register adds or refreshes a kiosk from its announcement and reports
// whether it was previously known but disconnected.
func (r *KioskRegistry) Register(a *Announcement, now time.Time) (reconnect bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, known := r.kiosks[a.Kiosk.ID]
	r.kiosks[a.Kiosk.ID] = &Kiosk{
		ID:           a.Kiosk.ID,
		Name:         a.Kiosk.Name,
		SessionID:    a.Session,
		HeartbeatSec: a.Kiosk.HeartbeatSec,
		LastSeen:     now,
		Connected:    true,
	}
	return known && !prev.Connected
}

// Touch records activity from a kiosk. It returns false for unknown kiosks.
func (r *KioskRegistry) Touch(id string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.kiosks[id]
	if !ok {
		return false
	}
	k.LastSeen = now
	k.Connected = true
	return true
}

// Session returns the session a kiosk is bound to.
func (r *KioskRegistry) Session(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if k, ok := r.kiosks[id]; ok {
		return k.SessionID, true
	}
	return "", false
}

// BySession returns the ids of kiosks bound to a session, sorted.
func (r *KioskRegistry) BySession(sessionID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for id, k := range r.kiosks {
		if k.SessionID == sessionID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Get returns a copy of a kiosk, or nil if not found.
func (r *KioskRegistry) Get(id string) *Kiosk {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if k, ok := r.kiosks[id]; ok {
		cpy := *k
		return &cpy
	}
	return nil
}

// Unregister removes a kiosk.
func (r *KioskRegistry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.kiosks, id)
}

// Expire marks kiosks silent for longer than tolerance heartbeats as
// disconnected and returns them. Kiosks without a heartbeat never expire.
func (r *KioskRegistry) Expire(now time.Time, tolerance float64) []Kiosk {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []Kiosk
	for _, k := range r.kiosks {
		if !k.Connected || k.HeartbeatSec <= 0 {
			continue
		}
		timeout := time.Duration(float64(k.HeartbeatSec) * tolerance * float64(time.Second))
		if now.Sub(k.LastSeen) > timeout {
			k.Connected = false
			expired = append(expired, *k)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].ID < expired[j].ID })
	return expired
}

// Connected returns the ids of connected kiosks, sorted.
func (r *KioskRegistry) Connected() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for id, k := range r.kiosks {
		if k.Connected {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
