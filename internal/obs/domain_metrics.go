package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PaymentURLTotal counts payment URL creation outcomes.
	PaymentURLTotal *prometheus.CounterVec
	// PaymentCallbackTotal counts gateway return/IPN callbacks by kind and outcome.
	PaymentCallbackTotal *prometheus.CounterVec
	// VoucherCheckTotal counts voucher evaluations by outcome.
	VoucherCheckTotal *prometheus.CounterVec
	// OrderStatusTotal counts order status transitions by target status.
	OrderStatusTotal *prometheus.CounterVec
	// TaskProcessedTotal counts background task executions.
	TaskProcessedTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PaymentURLTotal = registerCounterVec(reg, prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_url_total",
			Help:      "Count of payment URL creation outcomes.",
		}, "result")
		PaymentCallbackTotal = registerCounterVec(reg, prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_callback_total",
			Help:      "Count of payment gateway callbacks by kind and outcome.",
		}, "kind", "result")
		VoucherCheckTotal = registerCounterVec(reg, prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voucher_check_total",
			Help:      "Count of voucher checks by outcome.",
		}, "result")
		OrderStatusTotal = registerCounterVec(reg, prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_transitions_total",
			Help:      "Count of order status transitions by target status.",
		}, "status")
		TaskProcessedTotal = registerCounterVec(reg, prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_processed_total",
			Help:      "Count of background task executions by type and outcome.",
		}, "type", "result")
	})
}

// IncCounter increments c when the domain metrics are registered.
func IncCounter(c *prometheus.CounterVec, labels ...string) {
	if c == nil {
		return
	}
	c.WithLabelValues(labels...).Inc()
}

func registerCounterVec(reg prometheus.Registerer, opts prometheus.CounterOpts, labels ...string) *prometheus.CounterVec {
	return registerOrReuse(reg, prometheus.NewCounterVec(opts, labels))
}
