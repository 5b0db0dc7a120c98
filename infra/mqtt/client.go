// Package mqtt publishes simulation telemetry to an MQTT broker for live
// dashboards and operator consoles.
package mqtt

import (
	"crypto/tls"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Config defines the broker connection settings.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	// Site is the microgrid identifier used in topic paths.
	Site string `json:"site"`
	QoS  byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "microgrid-sim"
	}
	if c.Site == "" {
		c.Site = "default"
	}
}

// Client is the minimal publishing client the telemetry publisher needs.
type Client interface {
	Publish(topic string, payload []byte, qos byte) error
	Close()
}

// PahoClient wraps the Eclipse Paho client.
type PahoClient struct {
	client paho.Client
}

// NewPahoClient connects to the broker and returns a PahoClient.
func NewPahoClient(cfg Config, tlsConfig *tls.Config) (*PahoClient, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetTLSConfig(tlsConfig).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)

	client := paho.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &PahoClient{client: client}, nil
}

// Publish sends the payload on the topic and waits for completion.
func (c *PahoClient) Publish(topic string, payload []byte, qos byte) error {
	token := c.client.Publish(topic, qos, false, payload)
	token.Wait()
	return token.Error()
}

// Close disconnects from the broker.
func (c *PahoClient) Close() {
	if c.client.IsConnected() {
		c.client.Disconnect(250)
	}
}
