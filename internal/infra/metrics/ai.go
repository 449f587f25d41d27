package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		streamEventsTotal,
		streamTokensTotal,
		streamLatencyMs,
		streamFallbacks,
	)
}

var (
	streamEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_stream_events_total",
			Help: "Decoded stream events per decoder variant and kind.",
		},
		[]string{"variant", "kind"}, // kind: 'delta', 'revision', 'final', 'skipped'
	)

	streamTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_stream_tokens_total",
			Help: "Sum of tokens reported by upstream usage, per variant and direction.",
		},
		[]string{"variant", "direction"}, // direction: 'in', 'out'
	)

	streamLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_stream_latency_ms",
			Help:    "Upstream stream duration distribution in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		},
		[]string{"variant", "success"},
	)

	streamFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ai_stream_simulated_fallbacks_total",
			Help: "Streams that produced no deltas and fell back to simulated chunking.",
		},
	)
)

func IncStreamEvent(variant, kind string) {
	streamEventsTotal.WithLabelValues(norm(variant), norm(kind)).Inc()
}

func ObserveStreamUsage(variant string, tokensIn, tokensOut int) {
	streamTokensTotal.WithLabelValues(norm(variant), "in").Add(float64(tokensIn))
	streamTokensTotal.WithLabelValues(norm(variant), "out").Add(float64(tokensOut))
}

func ObserveStreamLatency(variant string, latencyMs int, success bool) {
	streamLatencyMs.WithLabelValues(norm(variant), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func IncSimulatedFallback() { streamFallbacks.Inc() }
