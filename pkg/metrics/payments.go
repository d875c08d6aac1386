package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records payment lifecycle and webhook delivery counters.
type PaymentMetrics struct {
	initialized *prometheus.CounterVec
	reconciled  *prometheus.CounterVec
	webhooks    *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	initialized := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_initialized_total",
		Help: "Payments initialized with the gateway.",
	}, []string{"method"})
	reconciled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_reconciled_total",
		Help: "Payment reconciliation outcomes.",
	}, []string{"outcome"})
	webhooks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_deliveries_total",
		Help: "Webhook deliveries by verification result.",
	}, []string{"result"})
	reg.MustRegister(initialized, reconciled, webhooks)
	return &PaymentMetrics{
		initialized: initialized,
		reconciled:  reconciled,
		webhooks:    webhooks,
	}
}

// IncInitialized increments the initialized counter for the payment method.
func (p *PaymentMetrics) IncInitialized(method string) {
	if p == nil || p.initialized == nil {
		return
	}
	p.initialized.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncReconciled increments the reconciliation counter for the outcome.
func (p *PaymentMetrics) IncReconciled(outcome string) {
	if p == nil || p.reconciled == nil {
		return
	}
	p.reconciled.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncWebhook increments the webhook delivery counter for the result.
func (p *PaymentMetrics) IncWebhook(result string) {
	if p == nil || p.webhooks == nil {
		return
	}
	p.webhooks.WithLabelValues(normalizeLabel(result)).Inc()
}
