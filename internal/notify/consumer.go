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

// Consumer pops events off the Kafka topic into recipient inboxes
type Consumer struct {
	reader *kafka.Reader
	inbox  *Inbox
	logger *zap.Logger
}

// NewConsumer creates a new notification consumer, or nil when Kafka is
// disabled
func NewConsumer(cfg *config.KafkaConfig, inbox *Inbox) *Consumer {
	if !cfg.Enabled {
		return nil
	}

	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        strings.Split(cfg.Brokers, ","),
			GroupID:        cfg.GroupID,
			Topic:          cfg.Topic,
			MinBytes:       10e3,
			MaxBytes:       10e6,
			CommitInterval: time.Second,
		}),
		inbox:  inbox,
		logger: logging.GetLogger().With(zap.String("component", "notify-consumer")),
	}
}

// Run consumes until the context is canceled. Handler errors are logged
// and the message is committed anyway: notifications are best-effort and a
// poison message must not wedge the group.
func (c *Consumer) Run(ctx context.Context) {
	if c == nil {
		return
	}
	defer c.reader.Close()

	c.logger.Info("Notification consumer started",
		zap.String("topic", c.reader.Config().Topic),
		zap.String("group", c.reader.Config().GroupID))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Notification consumer stopping")
				return
			}
			c.logger.Warn("Fetch failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		c.handle(ctx, msg.Value)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Warn("Commit failed", zap.Error(err))
		}
	}
}

func (c *Consumer) handle(ctx context.Context, value []byte) {
	var event Event
	if err := json.Unmarshal(value, &event); err != nil {
		c.logger.Warn("Skipping undecodable event", zap.Error(err))
		return
	}

	// Acting on your own content does not notify you
	if event.ActorID == event.RecipientID {
		return
	}

	if err := c.inbox.Push(ctx, event); err != nil {
		c.logger.Warn("Inbox push failed",
			zap.String("recipient_id", event.RecipientID.String()),
			zap.Error(err))
	}
}
