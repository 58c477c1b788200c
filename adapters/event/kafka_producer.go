package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/khoahotran/portfolio/internal/application/crud"
	"github.com/khoahotran/portfolio/internal/config"
	"github.com/khoahotran/portfolio/pkg/logger"
)

const TopicContentEvents = "content.events"

// messageWriter is the part of kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducer struct {
	writer messageWriter
	logger logger.Logger
}

var _ crud.Publisher = (*KafkaProducer)(nil)

var ErrNoBrokers = errors.New("config Kafka brokers not found")

func NewKafkaProducer(cfg config.Config, log logger.Logger) (*KafkaProducer, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	topic := cfg.Kafka.Topic
	if topic == "" {
		topic = TopicContentEvents
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
		// publishing must never hold up an admin request
		Async: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Error("Failed to deliver content events", err)
			}
		},
	}

	log.Info("Initialize Kafka producer successfully.")
	return &KafkaProducer{writer: writer, logger: log}, nil
}

// Publish sends one change event keyed by record id, so events of the same
// record stay ordered within a partition.
func (p *KafkaProducer) Publish(ctx context.Context, e crud.Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(e.ID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
			{Key: "resource", Value: []byte(e.Resource)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

func (p *KafkaProducer) Close() error {
	if p.writer == nil {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("Closed Kafka producer")
	return err
}
