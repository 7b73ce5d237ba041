// Package metrics exposes Prometheus counters for the
// produce, consume and cache paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MessagesPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_messages_published_total",
		Help: "Messages handed to the Kafka producer, by topic.",
	}, []string{"topic"})

	PublishFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_publish_failures_total",
		Help: "Messages that failed to enqueue or deliver, by topic.",
	}, []string{"topic"})

	MessagesConsumed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_messages_consumed_total",
		Help: "Messages consumed and acknowledged, by topic.",
	}, []string{"topic"})

	ConsumeFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_consume_failures_total",
		Help: "Messages whose processing failed and were left unacknowledged, by topic.",
	}, []string{"topic"})

	CacheOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_cache_operations_total",
		Help: "Redis operations performed, by operation name.",
	}, []string{"op"})
)

func init() {
	prometheus.MustRegister(MessagesPublished, PublishFailures, MessagesConsumed, ConsumeFailures, CacheOps)
}
