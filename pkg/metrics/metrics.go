package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics counts inbound processor webhook outcomes.
type WebhookMetrics struct {
	received *prometheus.CounterVec
	failed   *prometheus.CounterVec
	replayed prometheus.Counter
}

// NewWebhookMetrics registers webhook counters on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	received := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_received",
		Help: "Processor webhook events accepted, by event type.",
	}, []string{"type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_failed",
		Help: "Processor webhook events whose handler returned an error.",
	}, []string{"type"})
	replayed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "webhook_events_replayed",
		Help: "Duplicate webhook deliveries short-circuited by the idempotency guard.",
	})
	reg.MustRegister(received, failed, replayed)
	return &WebhookMetrics{received: received, failed: failed, replayed: replayed}
}

// IncReceived counts an accepted event.
func (m *WebhookMetrics) IncReceived(eventType string) {
	if m == nil || m.received == nil {
		return
	}
	m.received.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailed counts a failed event.
func (m *WebhookMetrics) IncFailed(eventType string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncReplayed counts a duplicate delivery.
func (m *WebhookMetrics) IncReplayed() {
	if m == nil || m.replayed == nil {
		return
	}
	m.replayed.Inc()
}

// SweepMetrics records payout sweep outcomes for scheduled jobs.
type SweepMetrics struct {
	duration  *prometheus.HistogramVec
	completed *prometheus.CounterVec
	failed    *prometheus.CounterVec
}

// NewSweepMetrics registers payout sweep metrics on the provided registerer.
func NewSweepMetrics(reg prometheus.Registerer) *SweepMetrics {
	if reg == nil {
		return &SweepMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payout_sweep_duration_seconds",
		Help:    "Duration of payout sweeps in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	completed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_transfers_completed",
		Help: "Transfers that succeeded during sweeps.",
	}, []string{"job"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_transfers_failed",
		Help: "Transfers marked retry_pending during sweeps.",
	}, []string{"job"})
	reg.MustRegister(duration, completed, failed)
	return &SweepMetrics{duration: duration, completed: completed, failed: failed}
}

// ObserveDuration records the duration for the named job.
func (m *SweepMetrics) ObserveDuration(job string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// AddCompleted counts successful transfers for the named job.
func (m *SweepMetrics) AddCompleted(job string, n int) {
	if m == nil || m.completed == nil {
		return
	}
	m.completed.WithLabelValues(normalizeLabel(job)).Add(float64(n))
}

// AddFailed counts failed transfers for the named job.
func (m *SweepMetrics) AddFailed(job string, n int) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(job)).Add(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
