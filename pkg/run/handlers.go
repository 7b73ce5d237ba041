package run

import (
	"go.uber.org/zap"

	"github.com/edgerelay/kafka-redis-bridge/pkg/kafka"
	"github.com/edgerelay/kafka-redis-bridge/pkg/message"
)

// EventCache is the slice of the cache the user events listener needs.
type EventCache interface {
	CacheUserEvent(userID, eventData string) error
}

// testTopicHandler is the fixed processing step for the test topic.
// Processing is a no-op beyond logging; a nil return acknowledges
// the message.
func testTopicHandler(logger *zap.Logger) kafka.Handler {
	return func(m message.Message) error {
		logger.Info("test message processed",
			zap.String("topic", m.Topic),
			zap.Int32("partition", m.Partition),
			zap.Int64("offset", m.Offset),
			zap.Int("payload_len", len(m.Value)))
		return nil
	}
}

// userEventHandler mirrors consumed user events into the cache,
// keyed by the message key (the user id). A cache failure leaves
// the message unacknowledged for redelivery.
func userEventHandler(store EventCache, logger *zap.Logger) kafka.Handler {
	return func(m message.Message) error {
		logger.Info("user event received",
			zap.String("user_id", m.Key), zap.String("topic", m.Topic))

		return store.CacheUserEvent(m.Key, m.Value)
	}
}
