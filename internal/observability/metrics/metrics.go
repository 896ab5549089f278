package metrics

import "github.com/prometheus/client_golang/prometheus"

// ProxyMetrics exposes counters/histograms for the booking proxy.
type ProxyMetrics struct {
	passthroughTotal *prometheus.CounterVec
	confirmTotal     *prometheus.CounterVec
	cfLatency        *prometheus.HistogramVec
}

func NewProxyMetrics(reg prometheus.Registerer) *ProxyMetrics {
	m := &ProxyMetrics{
		passthroughTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingwidget",
			Subsystem: "proxy",
			Name:      "cf_requests_total",
			Help:      "Total Checkfront passthrough requests",
		}, []string{"operation", "status"}),
		confirmTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingwidget",
			Subsystem: "proxy",
			Name:      "payment_confirm_total",
			Help:      "Total payment confirmation requests",
		}, []string{"result"}),
		cfLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bookingwidget",
			Subsystem: "proxy",
			Name:      "cf_latency_seconds",
			Help:      "Latency of Checkfront passthrough handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.passthroughTotal, m.confirmTotal, m.cfLatency)
	return m
}

func (m *ProxyMetrics) ObservePassthrough(operation, status string) {
	if m == nil {
		return
	}
	m.passthroughTotal.WithLabelValues(operation, status).Inc()
}

func (m *ProxyMetrics) ObserveConfirm(result string) {
	if m == nil {
		return
	}
	m.confirmTotal.WithLabelValues(result).Inc()
}

func (m *ProxyMetrics) ObserveLatency(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.cfLatency.WithLabelValues(operation).Observe(seconds)
}
