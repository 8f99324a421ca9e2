package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/campoos/backend-lixeira-app/internal/config"
	"github.com/campoos/backend-lixeira-app/internal/core"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// publisher is the part of mqtt.Client used by the notifier
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	IsConnected() bool
	Disconnect(quiesce uint)
}

// MQTTNotifier publishes committed bin actions to the device topic
type MQTTNotifier struct {
	client  publisher
	topic   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewMQTTNotifier connects to the broker and returns a notifier for cfg.Topic
func NewMQTTNotifier(cfg config.MQTTConfig, logger *zap.Logger) (*MQTTNotifier, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(cfg.PublishTimeout)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Info("Connected to MQTT broker", zap.String("broker", cfg.Broker))
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("Connection to MQTT broker lost", zap.String("broker", cfg.Broker), zap.Error(err))
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.PublishTimeout) {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: connection timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", cfg.Broker, err)
	}

	return newMQTTNotifier(client, cfg.Topic, cfg.PublishTimeout, logger), nil
}

func newMQTTNotifier(client publisher, topic string, timeout time.Duration, logger *zap.Logger) *MQTTNotifier {
	return &MQTTNotifier{
		client:  client,
		topic:   topic,
		timeout: timeout,
		logger:  logger,
	}
}

// Notify publishes the event as JSON with QoS 1
func (n *MQTTNotifier) Notify(ctx context.Context, event *core.ActionEvent) error {
	if !n.client.IsConnected() {
		return errors.New("not connected to MQTT broker")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode action event: %w", err)
	}

	token := n.client.Publish(n.topic, 1, false, payload)
	select {
	case <-token.Done():
	case <-time.After(n.timeout):
		return fmt.Errorf("publish to %s timed out", n.topic)
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", n.topic, err)
	}

	n.logger.Debug("Published bin action",
		zap.String("topic", n.topic),
		zap.Int64("analysis_id", event.AnalysisID),
		zap.String("action", string(event.Action)))
	return nil
}

// Close disconnects from the broker
func (n *MQTTNotifier) Close() error {
	n.client.Disconnect(250)
	return nil
}

// NopNotifier drops every event
type NopNotifier struct{}

// Notify implements core.ActionNotifier
func (NopNotifier) Notify(context.Context, *core.ActionEvent) error { return nil }

// Close is a no-op
func (NopNotifier) Close() error { return nil }
