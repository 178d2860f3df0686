package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"weatherstation/models"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// amqpChannel is the subset of *amqp.Channel used for publishing
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQMirror publishes records to a durable direct exchange
type RabbitMQMirror struct {
	conn       *amqp.Connection
	channel    amqpChannel
	exchange   string
	routingKey string
	deviceID   string
	logger     *zap.Logger
}

// NewRabbitMQMirror dials url, declares the exchange and returns a mirror
func NewRabbitMQMirror(url, exchange, routingKey, deviceID string, logger *zap.Logger) (*RabbitMQMirror, error) {
	var conn *amqp.Connection
	var err error

	logger.Info("Connecting to RabbitMQ", zap.String("exchange", exchange))

	maxRetries := 3
	for attempt := 1; attempt <= maxRetries; attempt++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}

		logger.Warn("Failed to connect to RabbitMQ",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err))

		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * 2 * time.Second)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Info("Exchange declared", zap.String("exchange", exchange))

	m := newRabbitMQMirror(channel, exchange, routingKey, deviceID, logger)
	m.conn = conn
	return m, nil
}

func newRabbitMQMirror(channel amqpChannel, exchange, routingKey, deviceID string, logger *zap.Logger) *RabbitMQMirror {
	return &RabbitMQMirror{
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
		deviceID:   deviceID,
		logger:     logger,
	}
}

func (r *RabbitMQMirror) Name() string {
	return "rabbitmq"
}

func (r *RabbitMQMirror) Publish(ctx context.Context, record models.Record) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	messageID := uuid.New().String()
	err = r.channel.PublishWithContext(ctx,
		r.exchange,   // exchange
		r.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    messageID,
			AppId:        r.deviceID,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    record.Time(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	r.logger.Debug("Published record to RabbitMQ",
		zap.String("message_id", messageID),
		zap.String("routing_key", r.routingKey))
	return nil
}

// Close closes the channel and then the connection
func (r *RabbitMQMirror) Close() error {
	r.logger.Info("Closing RabbitMQ connection")

	if err := r.channel.Close(); err != nil {
		r.logger.Error("Error closing channel", zap.Error(err))
	}

	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			r.logger.Error("Error closing connection", zap.Error(err))
			return err
		}
	}
	return nil
}
