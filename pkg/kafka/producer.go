package kafka

import (
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"

	"github.com/edgerelay/kafka-redis-bridge/pkg/metrics"
)

// flushTimeoutMs bounds how long Close waits for in-flight messages.
const flushTimeoutMs = 5000

// producerClient is the part of *kafka.Producer the Producer uses.
type producerClient interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Events() chan kafka.Event
	Flush(timeoutMs int) int
	Close()
}

// Producer publishes string payloads to Kafka topics. Sends are
// asynchronous; delivery outcomes are logged by a watcher goroutine
// with no coordination across in-flight messages.
type Producer struct {
	client producerClient
	logger *zap.Logger
}

// Send enqueues payload on topic. An empty key lets the broker pick
// the partition; an empty payload is still sent. Enqueue failures
// return the client's error untouched.
func (p *Producer) Send(topic, key, payload string) error {
	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic: &topic, Partition: kafka.PartitionAny,
		},
		Value: []byte(payload),
	}
	if key != "" {
		msg.Key = []byte(key)
	}

	metrics.MessagesPublished.WithLabelValues(topic).Inc()

	if err := p.client.Produce(msg, nil); err != nil {
		metrics.PublishFailures.WithLabelValues(topic).Inc()
		p.logger.Error("produce enqueue failed",
			zap.String("topic", topic), zap.String("key", key), zap.Error(err))
		return err
	}

	p.logger.Debug("message enqueued",
		zap.String("topic", topic), zap.String("key", key), zap.Int("payload_len", len(payload)))
	return nil
}

// SendJSON marshals v to JSON and sends it as the payload.
func (p *Producer) SendJSON(topic, key string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		p.logger.Error("payload json marshal failed",
			zap.String("topic", topic), zap.Error(err))
		return err
	}

	return p.Send(topic, key, string(payload))
}

// Close flushes outstanding messages and closes the client, which
// also stops the delivery watcher.
func (p *Producer) Close() {
	if n := p.client.Flush(flushTimeoutMs); n > 0 {
		p.logger.Warn("closing producer with undelivered messages", zap.Int("remaining", n))
	}
	p.client.Close()
}

// watchDeliveries drains the client's event channel, logging each
// delivery report. It exits when Close closes the channel.
func (p *Producer) watchDeliveries() {
	for e := range p.client.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			tp := ev.TopicPartition
			topic := ""
			if tp.Topic != nil {
				topic = *tp.Topic
			}

			if tp.Error != nil {
				metrics.PublishFailures.WithLabelValues(topic).Inc()
				p.logger.Error("message delivery failed",
					zap.String("topic", topic), zap.Error(tp.Error))
				continue
			}

			p.logger.Info("message delivered",
				zap.String("topic", topic),
				zap.Int32("partition", tp.Partition),
				zap.Int64("offset", int64(tp.Offset)))
		case kafka.Error:
			p.logger.Error("producer error",
				zap.String("code", ev.Code().String()), zap.Error(ev))
		}
	}
}
