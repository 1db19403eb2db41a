package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Announcement is the v1 message a kiosk publishes to its register topic to
// bind itself to a preview session.
type Announcement struct {
	Version int       `json:"version"`
	Kiosk   KioskInfo `json:"kiosk"`
	Session string    `json:"session_id"`
}

// KioskInfo describes the announcing display.
type KioskInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	HeartbeatSec int    `json:"heartbeat_sec"`
}

// ParseAnnouncement decodes and checks an announcement payload.
func ParseAnnouncement(data []byte) (*Announcement, error) {
	var a Announcement
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("invalid announcement JSON: %w", err)
	}
	if a.Version != 1 {
		return nil, fmt.Errorf("unsupported announcement version: %d", a.Version)
	}
	if a.Kiosk.ID == "" {
		return nil, fmt.Errorf("kiosk.id is required")
	}
	if strings.ContainsAny(a.Kiosk.ID, "/+#") {
		return nil, fmt.Errorf("kiosk.id %q contains topic characters", a.Kiosk.ID)
	}
	if a.Session == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	return &a, nil
}

// InputMessage is a pointer or navigation input published by a kiosk.
type InputMessage struct {
	Kind      string `json:"kind"`
	ElementID string `json:"element_id,omitempty"`
	PageID    string `json:"page_id,omitempty"`
}

// Topics builds the topic names used under one prefix.
type Topics struct {
	Prefix string
}

func (t Topics) Register(kioskID string) string { return t.Prefix + "/kiosk/" + kioskID + "/register" }
func (t Topics) Input(kioskID string) string    { return t.Prefix + "/kiosk/" + kioskID + "/input" }
func (t Topics) Events(kioskID string) string   { return t.Prefix + "/kiosk/" + kioskID + "/events" }
func (t Topics) RegisterWildcard() string       { return t.Prefix + "/kiosk/+/register" }
func (t Topics) InputWildcard() string          { return t.Prefix + "/kiosk/+/input" }

// KioskID extracts the kiosk id from a kiosk topic.
func (t Topics) KioskID(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, t.Prefix+"/kiosk/")
	if !ok {
		return "", false
	}
	id, _, ok := strings.Cut(rest, "/")
	return id, ok && id != ""
}

// topicMatches reports whether topic matches an MQTT filter with + and #
// wildcards.
func topicMatches(filter, topic string) bool {
	f := strings.Split(filter, "/")
	t := strings.Split(topic, "/")
	for i, part := range f {
		if part == "#" {
			return true
		}
		if i >= len(t) {
			return false
		}
		if part != "+" && part != t[i] {
			return false
		}
	}
	return len(f) == len(t)
}
