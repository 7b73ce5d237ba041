package kafka

import (
	"context"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"

	"github.com/edgerelay/kafka-redis-bridge/pkg/message"
	"github.com/edgerelay/kafka-redis-bridge/pkg/metrics"
)

// Handler processes one consumed message. A non-nil error skips the
// commit so the broker redelivers the message.
type Handler func(msg message.Message) error

// consumerClient is the part of *kafka.Consumer the Consumer uses.
type consumerClient interface {
	ReadMessage(timeout time.Duration) (*kafka.Message, error)
	CommitMessage(m *kafka.Message) ([]kafka.TopicPartition, error)
	Close() error
}

// Consumer reads one message at a time from a single topic and
// commits manually after the handler succeeds.
type Consumer struct {
	client      consumerClient
	topic       string
	handler     Handler
	readTimeout time.Duration
	logger      *zap.Logger
}

// Run loops until ctx is done, reading and dispatching messages.
// To be used in an ErrGroup.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.client.Close()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer: exit", zap.String("topic", c.topic))
			return ctx.Err()
		default:
		}

		msg, err := c.client.ReadMessage(c.readTimeout)
		if err != nil {
			if kerr, ok := err.(kafka.Error); ok && kerr.Code() == kafka.ErrTimedOut {
				continue
			}
			// transient broker errors are logged, the loop keeps polling
			c.logger.Error("read failed", zap.String("topic", c.topic), zap.Error(err))
			continue
		}

		c.dispatch(msg)
	}
}

// dispatch runs the handler and commits only on success, leaving
// redelivery of failed messages to the broker.
func (c *Consumer) dispatch(msg *kafka.Message) {
	m := message.Message{
		Key:       string(msg.Key),
		Value:     string(msg.Value),
		Partition: msg.TopicPartition.Partition,
		Offset:    int64(msg.TopicPartition.Offset),
		Timestamp: msg.Timestamp,
	}
	if msg.TopicPartition.Topic != nil {
		m.Topic = *msg.TopicPartition.Topic
	}

	c.logger.Info("message received",
		zap.String("topic", m.Topic),
		zap.String("key", m.Key),
		zap.Int32("partition", m.Partition),
		zap.Int64("offset", m.Offset))

	if err := c.handler(m); err != nil {
		metrics.ConsumeFailures.WithLabelValues(m.Topic).Inc()
		c.logger.Error("processing failed, message left uncommitted",
			zap.String("topic", m.Topic),
			zap.String("key", m.Key),
			zap.Int64("offset", m.Offset),
			zap.Error(err))
		return
	}

	if _, err := c.client.CommitMessage(msg); err != nil {
		metrics.ConsumeFailures.WithLabelValues(m.Topic).Inc()
		c.logger.Error("commit failed",
			zap.String("topic", m.Topic), zap.Int64("offset", m.Offset), zap.Error(err))
		return
	}

	metrics.MessagesConsumed.WithLabelValues(m.Topic).Inc()
	c.logger.Debug("message committed",
		zap.String("topic", m.Topic), zap.Int64("offset", m.Offset))
}
