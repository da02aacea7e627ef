package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/cvnova/internal/config"
	"github.com/khoahotran/cvnova/internal/domain/analytics"
	"github.com/khoahotran/cvnova/pkg/logger"
)

const TopicViewEvents = "view.events"

type KafkaProducerClient struct {
	ViewEventsWriter *kafka.Writer
	logger           logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	// writer 'view.events'
	viewWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicViewEvents,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}

	log.Info("Initialize Kafka Producers successfully.", zap.Strings("brokers", brokers))

	return &KafkaProducerClient{ViewEventsWriter: viewWriter, logger: log}, nil
}

// PublishView keys messages by document id so views of one CV stay ordered.
func (c *KafkaProducerClient) PublishView(ctx context.Context, evt analytics.ViewEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode view event: %w", err)
	}
	return c.ViewEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.CVID),
		Value: payload,
		Time:  evt.ViewedAt,
	})
}

func (c *KafkaProducerClient) Close() {
	if c.ViewEventsWriter != nil {
		if err := c.ViewEventsWriter.Close(); err != nil {
			c.logger.Warn("Failed to close view events writer", zap.Error(err))
		}
	}
	c.logger.Info("Closed Kafka Producers")
}
