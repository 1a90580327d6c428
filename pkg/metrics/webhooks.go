package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeProcessed = "processed"
	OutcomeIgnored   = "ignored"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// WebhookMetrics counts Shopify webhook deliveries by outcome.
type WebhookMetrics struct {
	duration  *prometheus.HistogramVec
	outcomes  *prometheus.CounterVec
	increment *prometheus.CounterVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wishlist_webhook_duration_seconds",
		Help:    "Duration of Shopify webhook handling in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"storefront", "topic"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wishlist_webhook_total",
		Help: "Shopify webhook deliveries by outcome.",
	}, []string{"storefront", "topic", "outcome"})
	increment := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wishlist_counter_increments_total",
		Help: "Gifted and carted increments applied to wishlist products.",
	}, []string{"storefront", "counter"})
	reg.MustRegister(duration, outcomes, increment)
	return &WebhookMetrics{
		duration:  duration,
		outcomes:  outcomes,
		increment: increment,
	}
}

func (w *WebhookMetrics) ObserveDuration(storefront, topic string, duration time.Duration) {
	if w == nil || w.duration == nil {
		return
	}
	w.duration.WithLabelValues(normalizeLabel(storefront), normalizeLabel(topic)).Observe(duration.Seconds())
}

func (w *WebhookMetrics) IncOutcome(storefront, topic, outcome string) {
	if w == nil || w.outcomes == nil {
		return
	}
	w.outcomes.WithLabelValues(normalizeLabel(storefront), normalizeLabel(topic), normalizeLabel(outcome)).Inc()
}

// AddIncrements records how many product counters a webhook bumped.
func (w *WebhookMetrics) AddIncrements(storefront, counter string, n int) {
	if w == nil || w.increment == nil || n <= 0 {
		return
	}
	w.increment.WithLabelValues(normalizeLabel(storefront), normalizeLabel(counter)).Add(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
