package mqtt

import (
	"log/slog"
	"os"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/Raiwe17/ProektSite/internal/config"
	"github.com/Raiwe17/ProektSite/internal/logging"
)

// Conn is the part of a broker connection the bridge uses.
type Conn interface {
	Subscribe(topic string, handler paho.MessageHandler) error
	Publish(topic string, payload []byte) error
	IsConnected() bool
}

const (
	connectTimeout   = 10 * time.Second
	subscribeTimeout = 10 * time.Second
	publishTimeout   = 5 * time.Second
)

// ClientOptions configures NewClient.
type ClientOptions struct {
	// Broker falls back to MQTT_URL, then tcp://localhost:1883.
	Broker      string
	ClientID    string
	Credentials config.Credentials
	Logger      *slog.Logger
}

// Client is a Paho connection that remembers its subscriptions and restores
// them whenever the broker connection comes back.
type Client struct {
	client paho.Client
	broker string
	logger *slog.Logger

	mu   sync.Mutex
	subs map[string]paho.MessageHandler
}

// BrokerURL returns broker if set, then the MQTT_URL environment variable,
// then the local default.
func BrokerURL(broker string) string {
	if broker != "" {
		return broker
	}
	if url := os.Getenv("MQTT_URL"); url != "" {
		return url
	}
	return "tcp://localhost:1883"
}

// NewClient creates a client but does not connect.
func NewClient(opts ClientOptions) *Client {
	c := &Client{
		broker: BrokerURL(opts.Broker),
		logger: opts.Logger,
		subs:   make(map[string]paho.MessageHandler),
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}

	po := paho.NewClientOptions().
		AddBroker(c.broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second).
		SetOrderMatters(false).
		SetOnConnectHandler(func(paho.Client) { c.resubscribe() }).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			c.logger.Warn("mqtt connection lost", "broker", c.broker, "error", err)
		})
	if opts.Credentials.Set() {
		po.SetUsername(opts.Credentials.User).SetPassword(opts.Credentials.Password)
	}
	c.client = paho.NewClient(po)
	return c
}

// Connect attempts to connect to the broker.
func (c *Client) Connect() error {
	return wait(c.client.Connect(), connectTimeout, "connect", c.broker)
}

// Subscribe registers handler for topic at QoS 1. While disconnected the
// subscription is only recorded and is made on the next connect.
func (c *Client) Subscribe(topic string, handler paho.MessageHandler) error {
	c.mu.Lock()
	c.subs[topic] = handler
	c.mu.Unlock()

	if !c.client.IsConnected() {
		return nil
	}
	return wait(c.client.Subscribe(topic, 1, handler), subscribeTimeout, "subscribe", topic)
}

func (c *Client) resubscribe() {
	c.mu.Lock()
	filters := make(map[string]byte, len(c.subs))
	handlers := make(map[string]paho.MessageHandler, len(c.subs))
	for topic, h := range c.subs {
		filters[topic] = 1
		handlers[topic] = h
	}
	c.mu.Unlock()

	c.logger.Info("mqtt connected", "broker", c.broker, "subscriptions", len(filters))
	if len(filters) == 0 {
		return
	}
	// Runs on the Paho callback goroutine, so the token is not waited on here.
	token := c.client.SubscribeMultiple(filters, func(cl paho.Client, m paho.Message) {
		if h := handlers[m.Topic()]; h != nil {
			h(cl, m)
			return
		}
		for topic, h := range handlers {
			if topicMatches(topic, m.Topic()) {
				h(cl, m)
				return
			}
		}
	})
	go func() {
		if err := wait(token, subscribeTimeout, "resubscribe", c.broker); err != nil {
			c.logger.Warn("mqtt resubscribe failed", "error", err)
		}
	}()
}

// Publish sends payload to topic at QoS 0.
func (c *Client) Publish(topic string, payload []byte) error {
	return wait(c.client.Publish(topic, 0, false, payload), publishTimeout, "publish", topic)
}

// Disconnect cleanly disconnects from the broker.
func (c *Client) Disconnect() {
	c.client.Disconnect(1000)
}

// IsConnected returns true if the client is connected.
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// Subscriptions returns the recorded topic filters.
func (c *Client) Subscriptions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.subs))
	for topic := range c.subs {
		out = append(out, topic)
	}
	return out
}

// TimeoutError reports a broker operation that did not complete in time.
type TimeoutError struct {
	Op    string
	Topic string
}

func (e *TimeoutError) Error() string {
	return "mqtt " + e.Op + " timeout: " + e.Topic
}

func wait(token paho.Token, d time.Duration, op, topic string) error {
	if !token.WaitTimeout(d) {
		return &TimeoutError{Op: op, Topic: topic}
	}
	return token.Error()
}

// Start connects and logs failures instead of returning them. It reports
// whether the client is connected.
func (c *Client) Start() bool {
	if err := c.Connect(); err != nil {
		c.logger.Warn("mqtt connect failed", "broker", c.broker, "error", err)
		return false
	}
	return true
}
