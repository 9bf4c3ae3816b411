// Package metrics declares the Prometheus collectors exported by a Loco
// session and its surrounding connection-management tooling.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsIssued counts commands written via Session.Request.
	RequestsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loco_session_requests_issued_total",
		Help: "Total number of commands written to the session.",
	})

	// ResponsesDelivered counts responses handed back through Await.
	ResponsesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loco_session_responses_delivered_total",
		Help: "Total number of responses delivered to an awaiting caller.",
	})

	// BroadcastsDelivered counts frames routed to the broadcast queue.
	BroadcastsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loco_session_broadcasts_delivered_total",
		Help: "Total number of frames routed to the broadcast queue.",
	})

	// CorruptedFrames counts frames rejected with non-zero status, an
	// invalid method, or a body decode failure.
	CorruptedFrames = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loco_session_corrupted_frames_total",
		Help: "Total number of frames rejected as corrupted, by kind.",
	}, []string{"kind"})

	// PendingRequests reports the current size of the pending-request
	// table.
	PendingRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "loco_session_pending_requests",
		Help: "Current number of requests awaiting a response.",
	})

	// AwaitLatency records the time between Request and the matching
	// Await returning.
	AwaitLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "loco_session_await_latency_seconds",
		Help:    "Latency between issuing a request and receiving its response.",
		Buckets: prometheus.DefBuckets,
	})

	// DialAttempts counts connection attempts made by the demonstration
	// binary's initial dial (retry + circuit breaker), by outcome.
	DialAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loco_dial_attempts_total",
		Help: "Total dial attempts to the Loco endpoint, by outcome.",
	}, []string{"outcome"})
)
