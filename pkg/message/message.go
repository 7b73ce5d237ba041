// Package message holds the types shared by the Kafka
// producer and consumer sides.
package message

import "time"

// Message represents a consumed Kafka record. The Key is the
// optional partition routing key, the Value is the opaque
// string payload.
type Message struct {
	Topic     string
	Key       string
	Value     string
	Partition int32
	Offset    int64
	Timestamp time.Time
}
