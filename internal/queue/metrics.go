package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Queue metrics for Prometheus monitoring.
var (
	EventsPublishedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_events_published_total",
			Help: "Total number of notification events published to the queue",
		},
	)

	EventPublishFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_event_publish_failures_total",
			Help: "Total number of failed publish attempts",
		},
	)

	EventsConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_events_consumed_total",
			Help: "Total number of consumed events by outcome",
		},
		[]string{"outcome"}, // acked, rejected
	)

	EventProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notify_event_processing_duration_seconds",
			Help:    "Duration of notification event processing",
			Buckets: prometheus.DefBuckets,
		},
	)

	BrokerReconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_broker_reconnects_total",
			Help: "Total number of broker reconnection attempts",
		},
	)
)
