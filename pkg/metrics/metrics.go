// Package metrics exposes bridge counters and gauges for Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dexosc"

// Cycle results.
const (
	ResultSent       = "sent"
	ResultSuppressed = "suppressed"
	ResultFailed     = "failed"
)

var (
	// CyclesTotal counts poll cycles by result.
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Total number of poll cycles by result",
		},
		[]string{"result"},
	)

	// Glucose is the last normalized glucose value.
	Glucose = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "glucose_mgdl",
			Help:      "Most recent glucose value in mg/dL",
		},
	)

	// LastSend is the Unix time of the last delivered message.
	LastSend = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_send_timestamp_seconds",
			Help:      "Unix time of the last chatbox message sent",
		},
	)

	// DiscoveryCandidates is the candidate count of the last discovery.
	DiscoveryCandidates = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "discovery_candidates",
			Help:      "Number of OSC endpoint candidates found by the last discovery",
		},
	)
)

// RecordCycle records the outcome of one cycle. value is ignored when zero.
func RecordCycle(result string, value int) {
	CyclesTotal.WithLabelValues(result).Inc()
	if value > 0 {
		Glucose.Set(float64(value))
	}
}

// RecordSend records a delivered message.
func RecordSend(at time.Time) {
	LastSend.Set(float64(at.Unix()))
}

// RecordDiscovery records how many candidates discovery produced.
func RecordDiscovery(n int) {
	DiscoveryCandidates.Set(float64(n))
}
