package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestHoneypotMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHoneypotMetrics(reg)
	m.ObserveTurn("grandma", true, 0.7, 1.2)
	m.ObserveTurn("grandma", true, 0.4, 0.3)
	m.ObserveIntel("upiIds", 2)
	m.ObserveIntel("upiIds", 0)
	m.ObserveFallback("timeout")
	m.ObserveCallback("evaluator", "ok")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		byName[f.GetName()] = f
	}

	turns := byName["vigilante_honeypot_turns_total"]
	if turns == nil {
		t.Fatalf("turns_total not registered")
	}
	if got := turns.GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected 2 turns, got %v", got)
	}

	intel := byName["vigilante_honeypot_intel_values_total"]
	if intel == nil {
		t.Fatalf("intel_values_total not registered")
	}
	if got := intel.GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected 2 intel values, got %v", got)
	}

	conf := byName["vigilante_honeypot_scam_confidence"]
	if conf == nil || conf.GetMetric()[0].GetHistogram().GetSampleCount() != 2 {
		t.Fatalf("expected two confidence samples")
	}
	if byName["vigilante_callback_delivery_total"] == nil {
		t.Fatalf("callback delivery counter missing")
	}
}

func TestHoneypotMetricsNilSafe(t *testing.T) {
	var m *HoneypotMetrics
	m.ObserveTurn("grandma", false, 0, 0)
	m.ObserveIntel("upiIds", 1)
	m.ObserveFallback("parse")
	m.ObserveCallback("archive", "error")
}
