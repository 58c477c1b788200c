package event

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio/internal/application/crud"
	"github.com/khoahotran/portfolio/internal/config"
	"github.com/khoahotran/portfolio/pkg/logger"
)

const consumerGroup = "portfolio-content-audit"

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// HandlerFunc processes one decoded content event.
type HandlerFunc func(ctx context.Context, e crud.Event) error

type KafkaConsumer struct {
	reader  messageReader
	handler HandlerFunc
	logger  logger.Logger
}

func NewKafkaConsumer(cfg config.Config, handler HandlerFunc, log logger.Logger) (*KafkaConsumer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	topic := cfg.Kafka.Topic
	if topic == "" {
		topic = TopicContentEvents
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    topic,
		GroupID:  consumerGroup,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	return &KafkaConsumer{reader: reader, handler: handler, logger: log}, nil
}

// Run consumes until ctx is cancelled. Undecodable messages are committed
// and skipped; a failed handler leaves the message uncommitted.
func (c *KafkaConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			c.logger.Error("Failed to read message from Kafka", err)
			if ctx.Err() != nil {
				return nil
			}
			continue
		}

		var e crud.Event
		if err := json.Unmarshal(msg.Value, &e); err != nil {
			c.logger.Warn("Skipping undecodable event", zap.String("key", string(msg.Key)), zap.Error(err))
			c.commit(ctx, msg)
			continue
		}

		if err := c.handler(ctx, e); err != nil {
			c.logger.Error("Failed to process event", err, zap.String("resource", e.Resource), zap.Stringer("id", e.ID))
			continue
		}
		c.commit(ctx, msg)
	}
}

func (c *KafkaConsumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message", err)
	}
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}

// AuditLog writes every content change to the log.
func AuditLog(log logger.Logger) HandlerFunc {
	return func(_ context.Context, e crud.Event) error {
		log.Info("Content changed",
			zap.String("type", e.Type),
			zap.String("resource", e.Resource),
			zap.String("table", e.Table),
			zap.Stringer("id", e.ID),
			zap.Time("at", e.At),
		)
		return nil
	}
}
