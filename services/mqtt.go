package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"weatherstation/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const mqttPublishTimeout = 5 * time.Second

// MQTTMirror publishes records as JSON to a broker topic
type MQTTMirror struct {
	client mqtt.Client
	topic  string
	logger *zap.Logger
}

// NewMQTTMirror connects to broker (host:port) and returns a mirror publishing to topic
func NewMQTTMirror(broker, clientID, user, pass, topic string, logger *zap.Logger) (*MQTTMirror, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", broker))
	opts.SetClientID(clientID)
	if user != "" {
		opts.SetUsername(user)
		opts.SetPassword(pass)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("Connected to MQTT broker", zap.String("broker", broker))
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", zap.Error(err))
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	return newMQTTMirror(client, topic, logger), nil
}

func newMQTTMirror(client mqtt.Client, topic string, logger *zap.Logger) *MQTTMirror {
	return &MQTTMirror{
		client: client,
		topic:  topic,
		logger: logger,
	}
}

func (m *MQTTMirror) Name() string {
	return "mqtt"
}

func (m *MQTTMirror) Publish(ctx context.Context, record models.Record) error {
	if !m.client.IsConnected() {
		return fmt.Errorf("mqtt client not connected")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	token := m.client.Publish(m.topic, 1, false, data)
	timeout := mqttPublishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("publish timeout for topic %s", m.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish record: %w", err)
	}

	m.logger.Debug("Published record to MQTT", zap.String("topic", m.topic))
	return nil
}

func (m *MQTTMirror) Close() error {
	m.client.Disconnect(250)
	m.logger.Info("MQTT mirror disconnected")
	return nil
}
