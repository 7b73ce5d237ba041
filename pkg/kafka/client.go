// Package kafka wraps the Confluent client with the producer,
// consumer and topic provisioning the service needs.
package kafka

import (
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"

	"github.com/edgerelay/kafka-redis-bridge/pkg/config"
)

// Topics and consumer groups are fixed for this service.
const (
	TestTopic       = "test-topic"
	UserEventsTopic = "user-events"

	TestGroup       = "test-group"
	UserEventsGroup = "user-group"

	topicPartitions  = 3
	topicReplication = 1
)

// Client builds producers and consumers against one broker setup.
type Client struct {
	cfg    config.Config
	logger *zap.Logger
}

// NewClient creates the Client struct, used to build producers
// and consumers.
func NewClient(cfg config.Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		logger: logger,
	}
}

// NewProducer connects a producer and starts its delivery
// report watcher.
func (k *Client) NewProducer() (*Producer, error) {
	producerConf := &kafka.ConfigMap{
		"bootstrap.servers": k.cfg.KafkaBrokers,
		"client.id":         k.cfg.KafkaClientID,
	}

	p, err := kafka.NewProducer(producerConf)
	if err != nil {
		return nil, err
	}

	producer := &Producer{
		client: p,
		logger: k.logger,
	}
	go producer.watchDeliveries()

	return producer, nil
}

// NewConsumer connects a consumer subscribed to a single topic.
// Offsets are committed manually, one message at a time.
func (k *Client) NewConsumer(topic, group string, handler Handler) (*Consumer, error) {
	consumerConf := &kafka.ConfigMap{
		"bootstrap.servers":  k.cfg.KafkaBrokers,
		"group.id":           group,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
		"client.id":          k.cfg.KafkaClientID,
	}

	c, err := kafka.NewConsumer(consumerConf)
	if err != nil {
		return nil, err
	}

	if err := c.SubscribeTopics([]string{topic}, nil); err != nil {
		c.Close()
		return nil, err
	}

	return &Consumer{
		client:      c,
		topic:       topic,
		handler:     handler,
		readTimeout: k.cfg.ReadTimeout,
		logger:      k.logger,
	}, nil
}
