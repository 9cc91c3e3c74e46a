// Package mqtt provides an abstraction for MQTT alert publishing.
package mqtt

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/crowdwatch/crowdwatch-go/internal/conf"
	"github.com/crowdwatch/crowdwatch-go/internal/errors"
	"github.com/crowdwatch/crowdwatch-go/internal/logging"
	"github.com/crowdwatch/crowdwatch-go/internal/observability/metrics"
)

// Client defines the interface for MQTT client operations.
type Client interface {
	// Connect attempts to connect to the MQTT broker.
	Connect(ctx context.Context) error

	// Publish sends a message to the specified topic on the MQTT broker.
	Publish(ctx context.Context, topic, payload string) error

	// IsConnected returns true if the client is currently connected.
	IsConnected() bool

	// Disconnect closes the connection to the MQTT broker.
	Disconnect()
}

// Config holds the configuration for the MQTT client.
type Config struct {
	Broker            string
	ClientID          string
	Username          string
	Password          string
	Topic             string // Default topic for publishing messages
	Retain            bool   // true to retain messages at the broker
	ReconnectCooldown time.Duration
	ConnectTimeout    time.Duration
	PublishTimeout    time.Duration
	DisconnectTimeout time.Duration
}

// DefaultConfig returns a Config with reasonable default values
func DefaultConfig() Config {
	return Config{
		ReconnectCooldown: 5 * time.Second,
		ConnectTimeout:    30 * time.Second,
		PublishTimeout:    10 * time.Second,
		DisconnectTimeout: 250 * time.Millisecond,
	}
}

// Package-level logger for MQTT related events
var mqttLogger *slog.Logger

func init() {
	var err error
	mqttLogger, _, err = logging.NewFileLogger("logs/mqtt.log", "mqtt", slog.LevelInfo)
	if err != nil {
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo})
		mqttLogger = slog.New(fbHandler).With("service", "mqtt")
	}
}

// client implements the Client interface.
type client struct {
	config          Config
	internalClient  pahomqtt.Client
	lastConnAttempt time.Time
	mu              sync.Mutex
	metrics         *metrics.MQTTMetrics
}

// NewClient creates a new MQTT client from the application settings.
func NewClient(settings *conf.Settings, mqttMetrics *metrics.MQTTMetrics) Client {
	cfg := DefaultConfig()
	cfg.Broker = settings.Realtime.MQTT.Broker
	cfg.ClientID = settings.Main.Name
	cfg.Username = settings.Realtime.MQTT.Username
	cfg.Password = settings.Realtime.MQTT.Password
	cfg.Topic = settings.Realtime.MQTT.Topic
	cfg.Retain = settings.Realtime.MQTT.Retain

	return &client{
		config:  cfg,
		metrics: mqttMetrics,
	}
}

// Connect attempts to establish a connection to the MQTT broker.
// It first resolves the broker's hostname and then attempts to connect.
func (c *client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Since(c.lastConnAttempt) < c.config.ReconnectCooldown {
		return errors.Newf("connection attempt too recent, last attempt was %v ago", time.Since(c.lastConnAttempt)).
			Component("mqtt").
			Category(errors.CategoryMQTTConn).
			Build()
	}
	c.lastConnAttempt = time.Now()

	u, err := url.Parse(c.config.Broker)
	if err != nil {
		return errors.Newf("invalid broker URL: %v", err).
			Component("mqtt").
			Category(errors.CategoryConfiguration).
			Build()
	}

	host := u.Hostname()
	if net.ParseIP(host) == nil {
		// Not an IP address, attempt to resolve it
		if _, err := net.DefaultResolver.LookupHost(ctx, host); err != nil {
			return errors.New(fmt.Errorf("failed to resolve hostname %s: %w", host, err)).
				Component("mqtt").
				Category(errors.CategoryMQTTConn).
				Build()
		}
	}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(c.config.Broker)
	opts.SetClientID(c.config.ClientID)
	opts.SetUsername(c.config.Username)
	opts.SetPassword(c.config.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)

	c.internalClient = pahomqtt.NewClient(opts)

	token := c.internalClient.Connect()
	if !token.WaitTimeout(c.config.ConnectTimeout) {
		return errors.Newf("connection timeout").
			Component("mqtt").
			Category(errors.CategoryMQTTConn).
			Context("broker", c.config.Broker).
			Build()
	}
	if err := token.Error(); err != nil {
		return errors.New(err).
			Component("mqtt").
			Category(errors.CategoryMQTTConn).
			Context("broker", c.config.Broker).
			Build()
	}

	if c.metrics != nil {
		c.metrics.UpdateConnectionStatus(true)
	}
	return nil
}

// Publish sends a message to the specified topic on the MQTT broker.
func (c *client) Publish(ctx context.Context, topic, payload string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.IsConnected() {
		return errors.Newf("not connected to MQTT broker").
			Component("mqtt").
			Category(errors.CategoryMQTTPublish).
			Build()
	}

	token := c.internalClient.Publish(topic, 0, c.config.Retain, payload)
	if !token.WaitTimeout(c.config.PublishTimeout) {
		return errors.Newf("publish timeout").
			Component("mqtt").
			Category(errors.CategoryMQTTPublish).
			Context("topic", topic).
			Build()
	}
	if err := token.Error(); err != nil {
		return errors.New(err).
			Component("mqtt").
			Category(errors.CategoryMQTTPublish).
			Context("topic", topic).
			Build()
	}

	if c.metrics != nil {
		c.metrics.IncrementMessagesDelivered()
		c.metrics.ObserveMessageSize(float64(len(payload)))
	}
	return nil
}

// IsConnected returns true if the client is currently connected to the MQTT broker.
func (c *client) IsConnected() bool {
	return c.internalClient != nil && c.internalClient.IsConnected()
}

// Disconnect closes the connection to the MQTT broker.
func (c *client) Disconnect() {
	if c.internalClient != nil && c.internalClient.IsConnected() {
		c.internalClient.Disconnect(uint(c.config.DisconnectTimeout.Milliseconds()))
		if c.metrics != nil {
			c.metrics.UpdateConnectionStatus(false)
		}
	}
}

func (c *client) onConnect(_ pahomqtt.Client) {
	mqttLogger.Info("Connected to MQTT broker", "broker", c.config.Broker)
}

func (c *client) onConnectionLost(_ pahomqtt.Client, err error) {
	mqttLogger.Warn("Connection to MQTT broker lost", "broker", c.config.Broker, "error", err)
	if c.metrics != nil {
		c.metrics.UpdateConnectionStatus(false)
	}
}
