package mqtt

import (
	"sort"
	"testing"

	paho "github.com/eclipse/paho.mqtt.golang"
)

func TestBrokerURL(t *testing.T) {
	t.Setenv("MQTT_URL", "")
	if got := BrokerURL(""); got != "tcp://localhost:1883" {
		t.Errorf("default broker = %q", got)
	}
	t.Setenv("MQTT_URL", "tcp://broker:1883")
	if got := BrokerURL(""); got != "tcp://broker:1883" {
		t.Errorf("env broker = %q", got)
	}
	if got := BrokerURL("ssl://explicit:8883"); got != "ssl://explicit:8883" {
		t.Errorf("explicit broker = %q", got)
	}
}

func TestSubscribeWhileDisconnected(t *testing.T) {
	c := NewClient(ClientOptions{Broker: "tcp://127.0.0.1:1", ClientID: "test"})
	if c.IsConnected() {
		t.Fatal("client should not connect on construction")
	}

	noop := func(paho.Client, paho.Message) {}
	if err := c.Subscribe("site/kiosk/+/input", noop); err != nil {
		t.Fatalf("subscribe while disconnected: %v", err)
	}
	if err := c.Subscribe("site/kiosk/+/register", noop); err != nil {
		t.Fatalf("subscribe while disconnected: %v", err)
	}

	got := c.Subscriptions()
	sort.Strings(got)
	if len(got) != 2 || got[0] != "site/kiosk/+/input" || got[1] != "site/kiosk/+/register" {
		t.Errorf("unexpected subscriptions %v", got)
	}
}

func TestTopicMatches(t *testing.T) {
	cases := []struct {
		filter, topic string
		want          bool
	}{
		{"site/kiosk/+/input", "site/kiosk/k1/input", true},
		{"site/kiosk/+/input", "site/kiosk/k1/register", false},
		{"site/#", "site/kiosk/k1/events", true},
		{"site/kiosk/+", "site/kiosk/k1/input", false},
		{"site/kiosk/k1/input", "site/kiosk/k1/input", true},
	}
	for _, tc := range cases {
		if got := topicMatches(tc.filter, tc.topic); got != tc.want {
			t.Errorf("topicMatches(%q, %q) = %v, want %v", tc.filter, tc.topic, got, tc.want)
		}
	}
}
