package event

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/cvnova/internal/config"
	"github.com/khoahotran/cvnova/internal/domain/analytics"
	"github.com/khoahotran/cvnova/pkg/logger"
)

// MessageReader is the subset of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewViewEventsReader(cfg config.Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    TopicViewEvents,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

const (
	defaultRecordAttempts = 3
	defaultRetryDelay     = 500 * time.Millisecond
)

type ViewConsumer struct {
	reader      MessageReader
	recorder    ViewRecorder
	logger      logger.Logger
	maxAttempts int
	retryDelay  time.Duration
}

func NewViewConsumer(reader MessageReader, recorder ViewRecorder, log logger.Logger) *ViewConsumer {
	return &ViewConsumer{
		reader:      reader,
		recorder:    recorder,
		logger:      log,
		maxAttempts: defaultRecordAttempts,
		retryDelay:  defaultRetryDelay,
	}
}

// Run processes messages until ctx is cancelled. A group commit covers every earlier
// offset on the partition, so a failed message is retried in place before the
// consumer moves on. Undecodable messages, and messages that still fail after
// maxAttempts, are logged, committed and dropped.
func (c *ViewConsumer) Run(ctx context.Context) error {
	c.logger.Info("Worker listening", zap.String("topic", TopicViewEvents))
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

		var evt analytics.ViewEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			c.logger.Warn("Failed to unmarshal view event, skipping", zap.Int64("offset", msg.Offset), zap.Error(err))
			c.commit(ctx, msg)
			continue
		}

		if err := c.record(ctx, evt); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Dropping view event after retries", err,
				zap.String("cv_id", evt.CVID), zap.Int64("offset", msg.Offset))
		}
		c.commit(ctx, msg)
	}
}

func (c *ViewConsumer) record(ctx context.Context, evt analytics.ViewEvent) error {
	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err = c.recorder.Execute(ctx, evt); err == nil {
			return nil
		}
		c.logger.Warn("Failed to record view", zap.String("cv_id", evt.CVID),
			zap.Int("attempt", attempt), zap.Error(err))
		if attempt == c.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
	return err
}

func (c *ViewConsumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message", err, zap.Int64("offset", msg.Offset))
	}
}
