package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MikeRez0/ypstorefront/internal/adapter/config"
	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaPublisher writes lifecycle events to one topic, keyed by order id so every
// event of an order lands in the same partition in order.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaPublisher(conf *config.Notify, logger *zap.Logger) (*KafkaPublisher, error) {
	if len(conf.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	if conf.Topic == "" {
		return nil, fmt.Errorf("no kafka topic configured")
	}

	sugar := logger.Sugar()
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(conf.Brokers...),
		Topic:                  conf.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           10 * time.Second,
		MaxAttempts:            3,
		AllowAutoTopicCreation: true,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			sugar.Errorf("kafka writer: "+msg, args...)
		}),
	}

	return &KafkaPublisher{writer: writer, logger: logger}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, events ...domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, len(events))
	for i, e := range events {
		value, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("error encoding event %s: %w", e.ID, err)
		}
		msgs[i] = kafka.Message{
			Key:   []byte(e.OrderID.String()),
			Value: value,
			Time:  e.OccurredAt,
			Headers: []kafka.Header{
				{Key: "type", Value: []byte(e.Type)},
				{Key: "event_id", Value: []byte(e.ID.String())},
			},
		}
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("error writing %d events to kafka: %w", len(msgs), err)
	}
	p.logger.Debug("Events published", zap.Int("count", len(msgs)))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
