// Package metrics holds the notifier's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "planetary_hour"

var (
	ticksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "ticks_total",
			Help:      "Wake-ups processed, by outcome (due, skipped, error)",
		},
		[]string{"outcome"},
	)

	alertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "shown_total",
			Help:      "Alert surface calls, by result",
		},
		[]string{"result"},
	)

	audioTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audio",
			Name:      "deliveries_total",
			Help:      "Audio deliveries, by path (foreground, background) and result",
		},
		[]string{"path", "result"},
	)

	connectedContexts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "foreground",
			Name:      "connected_contexts",
			Help:      "Foreground contexts currently connected",
		},
	)
)

// RecordTick counts one processed wake-up.
func RecordTick(outcome string) {
	ticksTotal.WithLabelValues(outcome).Inc()
}

// RecordAlert counts one alert surface call.
func RecordAlert(result string) {
	alertsTotal.WithLabelValues(result).Inc()
}

// RecordAudio counts one audio delivery attempt.
func RecordAudio(path, result string) {
	audioTotal.WithLabelValues(path, result).Inc()
}

// SetConnectedContexts updates the connected foreground context gauge.
func SetConnectedContexts(n int) {
	connectedContexts.Set(float64(n))
}
