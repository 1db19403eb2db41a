package mqtt

import (
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// mockConn is an in-memory Conn that routes messages by topic filter.
type mockConn struct {
	mu            sync.Mutex
	subscriptions map[string]paho.MessageHandler
	published     []published
	connected     bool
}

type published struct {
	topic   string
	payload []byte
}

func newMockConn() *mockConn {
	return &mockConn{
		subscriptions: make(map[string]paho.MessageHandler),
		connected:     true,
	}
}

func (m *mockConn) Subscribe(topic string, handler paho.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions[topic] = handler
	return nil
}

func (m *mockConn) Publish(topic string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, published{topic: topic, payload: payload})
	return nil
}

func (m *mockConn) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockConn) Published() []published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]published(nil), m.published...)
}

// SimulateMessage delivers payload to every handler whose filter matches topic.
func (m *mockConn) SimulateMessage(topic string, payload []byte) {
	m.mu.Lock()
	var handlers []paho.MessageHandler
	for filter, h := range m.subscriptions {
		if topicMatches(filter, topic) {
			handlers = append(handlers, h)
		}
	}
	m.mu.Unlock()
	for _, h := range handlers {
		h(nil, &mockMessage{topic: topic, payload: payload})
	}
}

type mockMessage struct {
	topic   string
	payload []byte
}

func (m *mockMessage) Duplicate() bool   { return false }
func (m *mockMessage) Qos() byte         { return 1 }
func (m *mockMessage) Retained() bool    { return false }
func (m *mockMessage) Topic() string     { return m.topic }
func (m *mockMessage) MessageID() uint16 { return 0 }
func (m *mockMessage) Payload() []byte   { return m.payload }
func (m *mockMessage) Ack()              {}
