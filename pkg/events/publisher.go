package events

import (
	"context"
	"fmt"

	"github.com/RigelNana/gazotheque/pkg/metrics"
	"github.com/RigelNana/gazotheque/pkg/models"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher emits consignment events. It satisfies the detail controller's
// notifier interface.
type Publisher struct {
	writer MessageWriter
	topic  string
	logger *logrus.Logger
}

func NewPublisher(brokers []string, topic string, logger *logrus.Logger) *Publisher {
	if topic == "" {
		topic = TopicMaterialConsigned
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return NewPublisherWithWriter(w, topic, logger)
}

// NewPublisherWithWriter wraps an existing writer, mostly for tests.
func NewPublisherWithWriter(w MessageWriter, topic string, logger *logrus.Logger) *Publisher {
	return &Publisher{writer: w, topic: topic, logger: logger}
}

func (p *Publisher) MaterialConsigned(ctx context.Context, m *models.Material, by *models.User) error {
	ev, err := NewMaterialConsigned(m, by)
	if err != nil {
		return err
	}
	payload, err := ev.Encode()
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{Key: ev.Key(), Value: payload})
	if err != nil {
		metrics.KafkaMessagesTotal.WithLabelValues("gateway", p.topic, "error").Inc()
		return fmt.Errorf("publish %s: %w", p.topic, err)
	}
	metrics.KafkaMessagesTotal.WithLabelValues("gateway", p.topic, "sent").Inc()

	p.logger.WithFields(logrus.Fields{
		"material_id": ev.MaterialID,
		"owner_id":    ev.OwnerUserID,
		"event_id":    ev.EventID,
	}).Info("consignment event published")
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
