package notify

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/picstream/picstream/pkg/config"
	"github.com/picstream/picstream/pkg/logging"
)

// Publisher writes events to the Kafka topic. A nil Publisher is a no-op,
// used when no brokers are configured.
type Publisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewPublisher creates a new event publisher, or nil when Kafka is disabled
func NewPublisher(cfg *config.KafkaConfig) *Publisher {
	if !cfg.Enabled {
		logging.GetLogger().Info("Kafka disabled, notifications off")
		return nil
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(cfg.Brokers, ",")...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 2 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &Publisher{
		writer: writer,
		logger: logging.GetLogger().With(zap.String("component", "notify-publisher")),
	}
}

// Publish sends one event, keyed by recipient so one user's notifications
// stay ordered. Failure is logged and swallowed; the triggering write is
// already committed and does not depend on delivery.
func (p *Publisher) Publish(ctx context.Context, event Event) {
	if p == nil {
		return
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("Failed to encode notification event", zap.Error(err))
		return
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.RecipientID.String()),
		Value: value,
	}); err != nil {
		p.logger.Warn("Notification publish failed",
			zap.String("type", event.Type),
			zap.String("recipient_id", event.RecipientID.String()),
			zap.Error(err))
	}
}

// Close closes the underlying writer
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
