package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang with connection tracking and subscriptions
// that survive reconnects.
//
// All methods are safe for concurrent use.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig
	topics Topics

	subscriptions map[string]subscription
	subMu         sync.RWMutex

	connected bool
	connMu    sync.RWMutex

	onConnect    func()
	onDisconnect func(err error)
	callbackMu   sync.RWMutex

	logger   Logger
	loggerMu sync.RWMutex
}

// Logger interface for optional logging support.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

type subscription struct {
	topic   string
	qos     byte
	handler MessageHandler
}

// MessageHandler is the callback signature for received messages.
//
// Handlers are invoked in separate goroutines by the paho library. A
// returned error is logged and does not affect acknowledgment.
type MessageHandler func(topic string, payload []byte) error

// Connect establishes a connection to the MQTT broker.
//
// It builds options from cfg, registers a Last Will on the system status
// topic, enables auto-reconnect and waits for the first connection.
//
// Returns ErrConnectionFailed if the broker is unreachable within the
// connect timeout.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := newClient(cfg)
	opts := buildClientOptions(cfg)
	configureLWT(opts, c.topics, cfg.Broker.ClientID)

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleDisconnect(err)
	})

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnect handler runs asynchronously and may not have fired yet.
	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	return c, nil
}

func newClient(cfg config.MQTTConfig) *Client {
	return &Client{
		cfg:           cfg,
		topics:        NewTopics(cfg.TopicPrefix),
		subscriptions: make(map[string]subscription),
	}
}

// Topics returns the topic builder for the configured prefix.
func (c *Client) Topics() Topics {
	return c.topics
}

func (c *Client) handleConnect() {
	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	c.restoreSubscriptions()
	c.client.Publish(c.topics.SystemStatus(), byte(c.cfg.QoS), true, buildStatusPayload(c.cfg.Broker.ClientID, "online", ""))

	c.callbackMu.RLock()
	callback := c.onConnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback()
	}
}

func (c *Client) handleDisconnect(err error) {
	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	if logger := c.getLogger(); logger != nil {
		logger.Warn("MQTT connection lost", "error", err)
	}

	c.callbackMu.RLock()
	callback := c.onDisconnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback(err)
	}
}

// restoreSubscriptions re-subscribes to all tracked topics after reconnect.
func (c *Client) restoreSubscriptions() {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	for _, sub := range c.subscriptions {
		c.client.Subscribe(sub.topic, sub.qos, c.wrapHandler(sub.handler))
	}
}

// Close publishes a graceful offline status and disconnects.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}

	if c.IsConnected() {
		payload := buildStatusPayload(c.cfg.Broker.ClientID, "offline", "graceful_shutdown")
		token := c.client.Publish(c.topics.SystemStatus(), byte(c.cfg.QoS), true, payload)
		token.WaitTimeout(defaultPublishTimeout)
	}

	c.client.Disconnect(defaultDisconnectQuiesce)

	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	return nil
}

// HealthCheck reports ErrNotConnected when the broker connection is down.
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected returns the last known connection state.
func (c *Client) IsConnected() bool {
	if c == nil {
		return false
	}
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client != nil && c.client.IsConnected()
}

// SetOnConnect sets a callback invoked on every (re)connect.
func (c *Client) SetOnConnect(callback func()) {
	c.callbackMu.Lock()
	c.onConnect = callback
	c.callbackMu.Unlock()
}

// SetOnDisconnect sets a callback invoked when the connection is lost.
func (c *Client) SetOnDisconnect(callback func(err error)) {
	c.callbackMu.Lock()
	c.onDisconnect = callback
	c.callbackMu.Unlock()
}

// SetLogger sets a logger for handler errors and panics.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// wrapHandler adds panic recovery and error logging to a MessageHandler.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		c.dispatch(handler, msg.Topic(), msg.Payload())
	}
}

func (c *Client) dispatch(handler MessageHandler, topic string, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Error("MQTT handler panic recovered", "topic", topic, "panic", r)
			}
		}
	}()

	if err := handler(topic, payload); err != nil {
		if logger := c.getLogger(); logger != nil {
			logger.Warn("MQTT handler returned error", "topic", topic, "error", err)
		}
	}
}
