// Package telemetry holds the prometheus instruments for the chat subsystem,
// exposed on /metrics by the HTTP server.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChatRequests counts answered questions by mode (rag or general).
	ChatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "petfolio_chat_requests_total",
		Help: "Chat questions answered, labelled by answering mode.",
	}, []string{"mode"})

	// ChatFailures counts degraded or failed requests by stage.
	ChatFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "petfolio_chat_failures_total",
		Help: "Chat failures, labelled by pipeline stage (index, model, memory).",
	}, []string{"stage"})

	// ModelLatency tracks language-model call duration in seconds.
	ModelLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "petfolio_chat_model_latency_seconds",
		Help:    "Latency of language model calls.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	})
)
