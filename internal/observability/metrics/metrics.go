package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// HoneypotMetrics exposes counters/histograms for conversation turns and reporting.
type HoneypotMetrics struct {
	turnsTotal       *prometheus.CounterVec
	turnLatency      prometheus.Histogram
	intelValuesTotal *prometheus.CounterVec
	scamConfidence   prometheus.Histogram
	fallbacksTotal   *prometheus.CounterVec
	callbacksTotal   *prometheus.CounterVec
}

func NewHoneypotMetrics(reg prometheus.Registerer) *HoneypotMetrics {
	m := &HoneypotMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vigilante",
			Subsystem: "honeypot",
			Name:      "turns_total",
			Help:      "Conversation turns processed",
		}, []string{"persona", "scam"}),
		turnLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vigilante",
			Subsystem: "honeypot",
			Name:      "turn_latency_seconds",
			Help:      "End-to-end latency of a turn",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 12, 20},
		}),
		intelValuesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vigilante",
			Subsystem: "honeypot",
			Name:      "intel_values_total",
			Help:      "New intelligence values added to sessions",
		}, []string{"category"}),
		scamConfidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vigilante",
			Subsystem: "honeypot",
			Name:      "scam_confidence",
			Help:      "Scorer confidence per message",
			Buckets:   []float64{0, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		}),
		fallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vigilante",
			Subsystem: "honeypot",
			Name:      "brain_fallback_total",
			Help:      "Turns answered with a fixed fallback reply",
		}, []string{"reason"}),
		callbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vigilante",
			Subsystem: "callback",
			Name:      "delivery_total",
			Help:      "Final result deliveries by sink",
		}, []string{"sink", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.turnLatency, m.intelValuesTotal, m.scamConfidence, m.fallbacksTotal, m.callbacksTotal)
	return m
}

func (m *HoneypotMetrics) ObserveTurn(persona string, isScam bool, confidence, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(persona, strconv.FormatBool(isScam)).Inc()
	m.scamConfidence.Observe(confidence)
	m.turnLatency.Observe(seconds)
}

func (m *HoneypotMetrics) ObserveIntel(category string, added int) {
	if m == nil || added <= 0 {
		return
	}
	m.intelValuesTotal.WithLabelValues(category).Add(float64(added))
}

func (m *HoneypotMetrics) ObserveFallback(reason string) {
	if m == nil {
		return
	}
	m.fallbacksTotal.WithLabelValues(reason).Inc()
}

func (m *HoneypotMetrics) ObserveCallback(sink, status string) {
	if m == nil {
		return
	}
	m.callbacksTotal.WithLabelValues(sink, status).Inc()
}
