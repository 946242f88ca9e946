package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ModerationMetrics records workflow outcomes for submissions and reviews.
type ModerationMetrics struct {
	duration    *prometheus.HistogramVec
	decisions   *prometheus.CounterVec
	transitions *prometheus.CounterVec
	submissions *prometheus.CounterVec
}

// NewModerationMetrics registers the moderation metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewModerationMetrics(reg prometheus.Registerer) *ModerationMetrics {
	if reg == nil {
		return &ModerationMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moderation_operation_duration_seconds",
		Help:    "Duration of moderation workflow operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_decisions_total",
		Help: "Reviewer verdicts applied, by subject and outcome.",
	}, []string{"subject", "outcome"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_store_transitions_total",
		Help: "Store status transitions, by target status.",
	}, []string{"status"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_submissions_total",
		Help: "Owner submissions accepted, by kind.",
	}, []string{"kind"})
	reg.MustRegister(duration, decisions, transitions, submissions)
	return &ModerationMetrics{
		duration:    duration,
		decisions:   decisions,
		transitions: transitions,
		submissions: submissions,
	}
}

// ObserveDuration records how long the named operation took.
func (m *ModerationMetrics) ObserveDuration(operation string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(d.Seconds())
}

// IncDecision counts a verdict on a product or store.
func (m *ModerationMetrics) IncDecision(subject, outcome string) {
	if m == nil || m.decisions == nil {
		return
	}
	m.decisions.WithLabelValues(normalizeLabel(subject), normalizeLabel(outcome)).Inc()
}

// AddDecisions counts n verdicts at once.
func (m *ModerationMetrics) AddDecisions(subject, outcome string, n int) {
	if m == nil || m.decisions == nil || n <= 0 {
		return
	}
	m.decisions.WithLabelValues(normalizeLabel(subject), normalizeLabel(outcome)).Add(float64(n))
}

// IncStoreTransition counts a store moving into status.
func (m *ModerationMetrics) IncStoreTransition(status string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncSubmission counts an accepted owner submission.
func (m *ModerationMetrics) IncSubmission(kind string) {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.WithLabelValues(normalizeLabel(kind)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
