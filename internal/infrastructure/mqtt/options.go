package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/config"
)

const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultDisconnectQuiesce = 1000 // milliseconds
	defaultKeepAlive         = 60 * time.Second

	maxQoS        = 2
	tlsMinVersion = tls.VersionTLS12
)

// buildClientOptions creates paho options: broker URL (tcp:// or ssl://),
// client ID, credentials, clean session and auto-reconnect with backoff.
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))
	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)
	opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}
	return opts
}

// configureLWT makes the broker publish a retained offline status if the
// client disappears without closing.
func configureLWT(opts *pahomqtt.ClientOptions, topics Topics, clientID string) {
	payload := buildStatusPayload(clientID, "offline", "unexpected_disconnect")
	opts.SetWill(topics.SystemStatus(), string(payload), 1, true)
}

type statusPayload struct {
	Status    string `json:"status"`
	ClientID  string `json:"client_id"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

func buildStatusPayload(clientID, status, reason string) []byte {
	data, _ := json.Marshal(statusPayload{ //nolint:errcheck // plain struct of strings
		Status:    status,
		ClientID:  clientID,
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return data
}
