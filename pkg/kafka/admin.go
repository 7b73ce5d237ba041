package kafka

import (
	"context"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// EnsureTopics creates the service's two topics with their fixed
// partition and replication settings. Topics that already exist are
// left untouched.
func (k *Client) EnsureTopics(ctx context.Context) error {
	admin, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": k.cfg.KafkaBrokers,
	})
	if err != nil {
		return errors.Wrap(err, "creating admin client")
	}
	defer admin.Close()

	specs := []kafka.TopicSpecification{
		{Topic: TestTopic, NumPartitions: topicPartitions, ReplicationFactor: topicReplication},
		{Topic: UserEventsTopic, NumPartitions: topicPartitions, ReplicationFactor: topicReplication},
	}

	results, err := admin.CreateTopics(ctx, specs)
	if err != nil {
		return errors.Wrap(err, "creating topics")
	}

	for _, r := range results {
		code := r.Error.Code()
		if code != kafka.ErrNoError && code != kafka.ErrTopicAlreadyExists {
			return errors.Wrap(r.Error, "creating topic "+r.Topic)
		}

		k.logger.Info("topic ready",
			zap.String("topic", r.Topic),
			zap.Int("partitions", topicPartitions),
			zap.Int("replication", topicReplication))
	}

	return nil
}
