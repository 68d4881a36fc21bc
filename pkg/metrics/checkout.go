package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records the health of the order pipeline.
type CheckoutMetrics struct {
	ordersCreated  *prometheus.CounterVec
	reconciliation *prometheus.CounterVec
	webhookEvents  *prometheus.CounterVec
	emailsSent     *prometheus.CounterVec
	quoteDuration  *prometheus.HistogramVec
}

// NewCheckoutMetrics registers the order pipeline metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created, labeled by the trigger that confirmed payment.",
	}, []string{"trigger"})
	reconciliation := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconciliation_outcomes_total",
		Help: "Reconciliation attempts by outcome.",
	}, []string{"outcome"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stripe_webhook_events_total",
		Help: "Stripe webhook events received, labeled by type and result.",
	}, []string{"event_type", "result"})
	emailsSent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_emails_total",
		Help: "Notification emails dispatched by kind and result.",
	}, []string{"kind", "result"})
	quoteDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quote_duration_seconds",
		Help:    "Duration of quote computation in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
	reg.MustRegister(ordersCreated, reconciliation, webhookEvents, emailsSent, quoteDuration)
	return &CheckoutMetrics{
		ordersCreated:  ordersCreated,
		reconciliation: reconciliation,
		webhookEvents:  webhookEvents,
		emailsSent:     emailsSent,
		quoteDuration:  quoteDuration,
	}
}

// IncOrderCreated counts an order confirmed by the named trigger (webhook/poll).
func (c *CheckoutMetrics) IncOrderCreated(trigger string) {
	if c == nil || c.ordersCreated == nil {
		return
	}
	c.ordersCreated.WithLabelValues(normalizeLabel(trigger)).Inc()
}

// IncReconciliation counts a reconciliation attempt by outcome.
func (c *CheckoutMetrics) IncReconciliation(outcome string) {
	if c == nil || c.reconciliation == nil {
		return
	}
	c.reconciliation.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncWebhookEvent counts a received Stripe event by type and result.
func (c *CheckoutMetrics) IncWebhookEvent(eventType, result string) {
	if c == nil || c.webhookEvents == nil {
		return
	}
	c.webhookEvents.WithLabelValues(normalizeLabel(eventType), normalizeLabel(result)).Inc()
}

// IncEmail counts a dispatched notification email.
func (c *CheckoutMetrics) IncEmail(kind, result string) {
	if c == nil || c.emailsSent == nil {
		return
	}
	c.emailsSent.WithLabelValues(normalizeLabel(kind), normalizeLabel(result)).Inc()
}

// ObserveQuoteDuration records how long a quote took to compute.
func (c *CheckoutMetrics) ObserveQuoteDuration(path string, duration time.Duration) {
	if c == nil || c.quoteDuration == nil {
		return
	}
	c.quoteDuration.WithLabelValues(normalizeLabel(path)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
