// Package alerts broadcasts weather alerts to the Kafka alerts topic for
// downstream automation consumers.
package alerts

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"perilwatch/internal/config"
	"perilwatch/internal/types"
)

// messageWriter is the slice of kafka-go's Writer the publisher uses,
// abstracted so tests can capture messages without a broker.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces weather alerts to the alerts topic. It implements
// types.AlertPublisher.
type Publisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured alerts topic.
func NewPublisher(cfg config.AlertingConfig, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.AlertsTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
		WriteTimeout: cfg.WriteTimeout,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishAlerts serializes and publishes the alerts in a single
// WriteMessages call. Messages are keyed by station so all alerts for one
// station land on the same partition in order.
func (p *Publisher) PublishAlerts(ctx context.Context, alerts []types.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	msgs := make([]kafkago.Message, len(alerts))
	for i, alert := range alerts {
		msg, err := serializeAlert(alert)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to publish weather alerts",
			err,
		)
	}

	p.logger.InfoContext(ctx, "weather alerts published", "count", len(alerts))
	return nil
}

// Close flushes and closes the underlying producer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeAlert marshals an alert into a Kafka message with routing headers.
func serializeAlert(alert types.Alert) (kafkago.Message, error) {
	data, err := json.Marshal(alert)
	if err != nil {
		return kafkago.Message{}, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to serialize alert",
			err,
		)
	}
	return kafkago.Message{
		Key:   []byte(alert.StationID),
		Value: data,
		Time:  time.Now().UTC(),
		Headers: []kafkago.Header{
			{Key: "alert_type", Value: []byte(alert.AlertType)},
			{Key: "severity", Value: []byte(alert.Severity)},
		},
	}, nil
}

// Compile-time assertion.
var _ types.AlertPublisher = (*Publisher)(nil)
