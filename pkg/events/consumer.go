package events

import (
	"context"
	"errors"
	"time"

	"github.com/RigelNana/gazotheque/pkg/metrics"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Handler processes one decoded consignment event.
type Handler func(ctx context.Context, ev MaterialConsigned) error

type Consumer struct {
	reader  MessageReader
	service string
	topic   string
	logger  *logrus.Logger
	backoff time.Duration
}

func NewConsumer(brokers []string, topic, groupID, service string, logger *logrus.Logger) *Consumer {
	if topic == "" {
		topic = TopicMaterialConsigned
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return NewConsumerWithReader(r, topic, service, logger)
}

func NewConsumerWithReader(r MessageReader, topic, service string, logger *logrus.Logger) *Consumer {
	return &Consumer{reader: r, service: service, topic: topic, logger: logger, backoff: time.Second}
}

// Run fetches until ctx is done. Malformed messages are committed and
// skipped. A message whose handler fails is not committed: it is handed to
// the handler again after a backoff until it succeeds or ctx is done.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	c.logger.WithFields(logrus.Fields{"topic": c.topic, "service": c.service}).Info("kafka consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			c.logger.WithError(err).Warn("kafka fetch failed")
			if !c.wait(ctx) {
				return nil
			}
			continue
		}

		if !c.process(ctx, msg, handle) {
			return nil
		}
		if err := c.reader.CommitMessages(context.WithoutCancel(ctx), msg); err != nil {
			c.logger.WithError(err).Warn("kafka commit failed")
		}
	}
}

// process reports false when ctx ended before the message was handled.
func (c *Consumer) process(ctx context.Context, msg kafka.Message, handle Handler) bool {
	ev, err := DecodeMaterialConsigned(msg.Value)
	if err != nil {
		c.logger.WithError(err).WithField("offset", msg.Offset).Warn("bad event payload")
		metrics.KafkaMessagesTotal.WithLabelValues(c.service, c.topic, "skipped").Inc()
		return true
	}
	for attempt := 1; ; attempt++ {
		err := handle(ctx, ev)
		if err == nil {
			metrics.KafkaMessagesTotal.WithLabelValues(c.service, c.topic, "processed").Inc()
			return true
		}
		metrics.KafkaMessagesTotal.WithLabelValues(c.service, c.topic, "failed").Inc()
		c.logger.WithError(err).WithFields(logrus.Fields{
			"material_id": ev.MaterialID,
			"event_id":    ev.EventID,
			"offset":      msg.Offset,
			"attempt":     attempt,
		}).Error("handle consignment event, retrying")
		if !c.wait(ctx) {
			return false
		}
	}
}

func (c *Consumer) wait(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.backoff):
		return true
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
