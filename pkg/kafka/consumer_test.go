package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"

	"github.com/edgerelay/kafka-redis-bridge/pkg/message"
)

type fakeConsumerClient struct {
	committed []*kafka.Message
	commitErr error
	closed    bool
}

func (f *fakeConsumerClient) ReadMessage(_ time.Duration) (*kafka.Message, error) {
	return nil, kafka.NewError(kafka.ErrTimedOut, "timed out", false)
}

func (f *fakeConsumerClient) CommitMessage(m *kafka.Message) ([]kafka.TopicPartition, error) {
	if f.commitErr != nil {
		return nil, f.commitErr
	}
	f.committed = append(f.committed, m)
	return nil, nil
}

func (f *fakeConsumerClient) Close() error {
	f.closed = true
	return nil
}

func newTestConsumer(f *fakeConsumerClient, handler Handler) *Consumer {
	return &Consumer{
		client:      f,
		topic:       TestTopic,
		handler:     handler,
		readTimeout: time.Millisecond,
		logger:      zap.NewNop(),
	}
}

func testMessage(topic, key, value string) *kafka.Message {
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: 1, Offset: 7},
		Key:            []byte(key),
		Value:          []byte(value),
		Timestamp:      time.Now(),
	}
}

func TestDispatchCommitsOnSuccess(t *testing.T) {
	f := &fakeConsumerClient{}

	var got message.Message
	c := newTestConsumer(f, func(m message.Message) error {
		got = m
		return nil
	})

	c.dispatch(testMessage(UserEventsTopic, "42", `{"action":"login"}`))

	if len(f.committed) != 1 {
		t.Fatal("successful processing should commit the message")
	}
	if got.Topic != UserEventsTopic || got.Key != "42" || got.Value != `{"action":"login"}` {
		t.Errorf("handler got wrong message: %+v", got)
	}
	if got.Partition != 1 || got.Offset != 7 {
		t.Errorf("wrong partition/offset: %+v", got)
	}
}

func TestDispatchSkipsCommitOnFailure(t *testing.T) {
	f := &fakeConsumerClient{}

	c := newTestConsumer(f, func(message.Message) error {
		return errors.New("processing failed")
	})

	c.dispatch(testMessage(TestTopic, "", "hello"))

	if len(f.committed) != 0 {
		t.Error("failed processing must leave the message uncommitted")
	}
}

func TestDispatchCommitError(t *testing.T) {
	f := &fakeConsumerClient{commitErr: errors.New("broker away")}

	c := newTestConsumer(f, func(message.Message) error { return nil })

	// a failed commit is logged only, redelivery is the broker's job
	c.dispatch(testMessage(TestTopic, "", "hello"))
}

func TestRunStopsOnCancel(t *testing.T) {
	f := &fakeConsumerClient{}
	c := newTestConsumer(f, func(message.Message) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Run(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if !f.closed {
		t.Error("client should be closed on exit")
	}
}
