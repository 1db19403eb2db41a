// Package mqtt connects physical kiosks to preview sessions. Kiosks announce
// themselves, publish pointer input and receive the actions their session
// fires.
package mqtt

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/Raiwe17/ProektSite/internal/events"
	"github.com/Raiwe17/ProektSite/internal/logging"
	"github.com/Raiwe17/ProektSite/internal/runtime"
)

// Sink receives kiosk input for a preview session. Deliver reports whether
// the session exists and accepted the input.
type Sink interface {
	Deliver(sessionID string, in runtime.Input) bool
}

// forwarded lists the events published back to kiosks.
var forwarded = map[string]bool{
	"page.navigated":  true,
	"action.navigate": true,
	"action.link":     true,
	"action.alert":    true,
}

// Forwarded selects the events Forward publishes, for use with
// events.Subscribe.
func Forwarded() events.Filter {
	return func(e events.Event) bool { return forwarded[e.Name] && e.Session() != "" }
}

// Bridge routes kiosk messages to sessions and session events to kiosks.
type Bridge struct {
	conn     Conn
	topics   Topics
	registry *KioskRegistry
	sink     Sink
	logger   *slog.Logger
	now      func() time.Time
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithLogger sets the bridge logger.
func WithLogger(l *slog.Logger) BridgeOption {
	return func(b *Bridge) { b.logger = l }
}

// WithRegistry shares a kiosk registry, e.g. with a Monitor.
func WithRegistry(r *KioskRegistry) BridgeOption {
	return func(b *Bridge) { b.registry = r }
}

// NewBridge creates a bridge publishing under prefix.
func NewBridge(conn Conn, prefix string, sink Sink, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		conn:     conn,
		topics:   Topics{Prefix: prefix},
		registry: NewKioskRegistry(),
		sink:     sink,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Registry returns the kiosk registry.
func (b *Bridge) Registry() *KioskRegistry {
	return b.registry
}

// Start subscribes to the register and input topics of every kiosk.
func (b *Bridge) Start() error {
	if err := b.conn.Subscribe(b.topics.RegisterWildcard(), b.handleRegister); err != nil {
		return err
	}
	return b.conn.Subscribe(b.topics.InputWildcard(), b.handleInput)
}

func (b *Bridge) handleRegister(_ paho.Client, msg paho.Message) {
	a, err := ParseAnnouncement(msg.Payload())
	if err != nil {
		b.fail(msg.Topic(), "invalid announcement", err)
		return
	}
	if id, ok := b.topics.KioskID(msg.Topic()); !ok || id != a.Kiosk.ID {
		b.fail(msg.Topic(), "announcement topic does not match kiosk id", nil)
		return
	}

	reconnect := b.registry.Register(a, b.now())
	b.logger.Info("kiosk registered", "kiosk_id", a.Kiosk.ID, "session_id", a.Session)
	events.Emit("info", "bridge.connected", "", map[string]interface{}{
		"kiosk_id":   a.Kiosk.ID,
		"session_id": a.Session,
		"reconnect":  reconnect,
	})
}

func (b *Bridge) handleInput(_ paho.Client, msg paho.Message) {
	kioskID, ok := b.topics.KioskID(msg.Topic())
	if !ok {
		return
	}
	sessionID, known := b.registry.Session(kioskID)
	if !known {
		b.fail(msg.Topic(), "input from unregistered kiosk", nil)
		return
	}
	b.registry.Touch(kioskID, b.now())

	var m InputMessage
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		b.fail(msg.Topic(), "invalid input JSON", err)
		return
	}
	kind, err := runtime.ParseInputKind(m.Kind)
	if err != nil {
		b.fail(msg.Topic(), "invalid input kind", err)
		return
	}

	delivered := b.sink.Deliver(sessionID, runtime.Input{Kind: kind, ElementID: m.ElementID, PageID: m.PageID})
	events.Emit("info", "bridge.input", "", map[string]interface{}{
		"kiosk_id":   kioskID,
		"session_id": sessionID,
		"kind":       m.Kind,
		"element_id": m.ElementID,
		"delivered":  delivered,
	})
}

func (b *Bridge) fail(topic, msg string, err error) {
	fields := map[string]interface{}{"topic": topic}
	if err != nil {
		fields["error"] = err.Error()
	}
	b.logger.Warn(msg, "topic", topic, "error", err)
	events.Emit("warning", "bridge.error", msg, fields)
}

// Forward publishes navigation and action events to the kiosks bound to the
// session that produced them, until ctx is done or sub is closed.
func (b *Bridge) Forward(ctx context.Context, sub events.Subscriber) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub:
			if !ok {
				return
			}
			b.forward(e)
		}
	}
}

func (b *Bridge) forward(e events.Event) {
	if !forwarded[e.Name] {
		return
	}
	sessionID := e.Session()
	if sessionID == "" {
		return
	}
	kiosks := b.registry.BySession(sessionID)
	if len(kiosks) == 0 {
		return
	}

	payload, err := json.Marshal(e)
	if err != nil {
		b.logger.Error("encode event", "error", err)
		return
	}
	for _, id := range kiosks {
		if err := b.conn.Publish(b.topics.Events(id), payload); err != nil {
			b.logger.Warn("publish to kiosk failed", "kiosk_id", id, "error", err)
		}
	}
}
