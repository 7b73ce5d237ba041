package kafka

import (
	"errors"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"
)

type fakeProducerClient struct {
	produced   []*kafka.Message
	produceErr error
	events     chan kafka.Event
	closed     bool
}

func (f *fakeProducerClient) Produce(m *kafka.Message, _ chan kafka.Event) error {
	if f.produceErr != nil {
		return f.produceErr
	}
	f.produced = append(f.produced, m)
	return nil
}

func (f *fakeProducerClient) Events() chan kafka.Event { return f.events }

func (f *fakeProducerClient) Flush(_ int) int { return 0 }

func (f *fakeProducerClient) Close() {
	if f.events != nil {
		close(f.events)
	}
	f.closed = true
}

func newTestProducer(f *fakeProducerClient) *Producer {
	return &Producer{client: f, logger: zap.NewNop()}
}

func TestSendArguments(t *testing.T) {
	f := &fakeProducerClient{}
	p := newTestProducer(f)

	if err := p.Send("test-topic", "user-1", "hello"); err != nil {
		t.Fatal("send: ", err)
	}

	if len(f.produced) != 1 {
		t.Fatalf("expected 1 message, got %d", len(f.produced))
	}

	m := f.produced[0]
	if m.TopicPartition.Topic == nil || *m.TopicPartition.Topic != "test-topic" {
		t.Error("wrong topic")
	}
	if m.TopicPartition.Partition != kafka.PartitionAny {
		t.Error("partition should be left to the broker")
	}
	if string(m.Key) != "user-1" {
		t.Errorf("wrong key: %s", m.Key)
	}
	if string(m.Value) != "hello" {
		t.Errorf("wrong payload: %s", m.Value)
	}
}

func TestSendEmptyKey(t *testing.T) {
	f := &fakeProducerClient{}
	p := newTestProducer(f)

	if err := p.Send("test-topic", "", "hello"); err != nil {
		t.Fatal("send: ", err)
	}

	if f.produced[0].Key != nil {
		t.Error("empty key should not be set on the message")
	}
}

func TestSendEmptyPayload(t *testing.T) {
	f := &fakeProducerClient{}
	p := newTestProducer(f)

	if err := p.Send("test-topic", "user-1", ""); err != nil {
		t.Fatal("empty payloads should still be sent: ", err)
	}

	if len(f.produced) != 1 {
		t.Error("empty payload should still be produced")
	}
}

func TestSendEnqueueError(t *testing.T) {
	queueFull := errors.New("queue full")
	f := &fakeProducerClient{produceErr: queueFull}
	p := newTestProducer(f)

	if err := p.Send("test-topic", "", "hello"); err != queueFull {
		t.Errorf("expected the client error untouched, got %v", err)
	}
}

func TestSendJSON(t *testing.T) {
	f := &fakeProducerClient{}
	p := newTestProducer(f)

	event := struct {
		Action string `json:"action"`
	}{Action: "login"}

	if err := p.SendJSON("user-events", "42", event); err != nil {
		t.Fatal("send json: ", err)
	}

	if got := string(f.produced[0].Value); got != `{"action":"login"}` {
		t.Errorf("wrong json payload: %s", got)
	}
}

func TestSendJSONMarshalError(t *testing.T) {
	f := &fakeProducerClient{}
	p := newTestProducer(f)

	if err := p.SendJSON("user-events", "42", func() {}); err == nil {
		t.Error("unmarshalable payload should fail")
	}

	if len(f.produced) != 0 {
		t.Error("nothing should be produced on marshal failure")
	}
}

func TestWatchDeliveriesDrains(t *testing.T) {
	f := &fakeProducerClient{events: make(chan kafka.Event, 2)}
	p := newTestProducer(f)

	topic := "test-topic"
	f.events <- &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: 1, Offset: 42},
	}
	f.events <- &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Error: errors.New("broker down")},
	}
	close(f.events)

	done := make(chan struct{})
	go func() {
		p.watchDeliveries()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not drain the event channel")
	}
}
