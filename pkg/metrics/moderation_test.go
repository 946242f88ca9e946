package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestModerationMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewModerationMetrics(reg)

	m.ObserveDuration("review_store", 120*time.Millisecond)
	m.IncDecision("product", "approved")
	m.AddDecisions("product", "rejected", 3)
	m.AddDecisions("product", "rejected", 0)
	m.IncStoreTransition("active")
	m.IncSubmission("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "moderation_decisions_total", "outcome", "rejected"); err != nil {
		t.Fatalf("fetch decisions: %v", err)
	} else if got != 3 {
		t.Fatalf("expected rejected=3, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "moderation_store_transitions_total", "status", "active"); err != nil {
		t.Fatalf("fetch transitions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected active=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "moderation_submissions_total", "kind", "unknown"); err != nil {
		t.Fatalf("fetch submissions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected unknown=1, got %f", got)
	}
	if got, err := fetchHistogramSum(mfs, "moderation_operation_duration_seconds", "operation", "review_store"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestModerationMetricsNilSafe(t *testing.T) {
	var m *ModerationMetrics
	m.IncDecision("store", "rejected")
	m.ObserveDuration("x", time.Second)

	noop := NewModerationMetrics(nil)
	noop.IncStoreTransition("active")
	noop.IncSubmission("created")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
