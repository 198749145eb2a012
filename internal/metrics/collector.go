// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Collector tracks transport attempts and chat invocation outcomes.
type Collector struct {
	attemptsTotal   *prometheus.CounterVec
	chatsTotal      *prometheus.CounterVec
	chatDuration    *prometheus.HistogramVec
	attemptsPerChat prometheus.Histogram

	logger *zap.Logger
}

// NewCollector creates a collector and registers its metrics with reg.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.attemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Total number of transport attempts by per-attempt result",
		},
		[]string{"result"},
	)

	c.chatsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chats_total",
			Help:      "Total number of chat invocations by terminal outcome",
		},
		[]string{"outcome"},
	)

	c.chatDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chat_duration_seconds",
			Help:      "Chat invocation duration in seconds, including retries",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	c.attemptsPerChat = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "attempts_per_chat",
			Help:      "Transport attempts consumed by one chat invocation",
			Buckets:   []float64{1, 2, 3, 4, 5, 8, 13},
		},
	)

	reg.MustRegister(c.attemptsTotal, c.chatsTotal, c.chatDuration, c.attemptsPerChat)
	return c
}

// RecordAttempt records the result of one transport attempt.
func (c *Collector) RecordAttempt(result string) {
	c.attemptsTotal.WithLabelValues(result).Inc()
}

// RecordChat records the terminal outcome of a chat invocation.
func (c *Collector) RecordChat(outcome string, attempts int, elapsed time.Duration) {
	c.chatsTotal.WithLabelValues(outcome).Inc()
	c.chatDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	c.attemptsPerChat.Observe(float64(attempts))
}
