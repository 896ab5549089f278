package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestProxyMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewProxyMetrics(reg)

	m.ObservePassthrough("item_list", "200")
	m.ObservePassthrough("item_list", "200")
	m.ObservePassthrough("item_rate", "404")
	m.ObserveConfirm("ok")
	m.ObserveConfirm("rejected")
	m.ObserveLatency("item_list", 0.05)

	if got := testutil.ToFloat64(m.passthroughTotal.WithLabelValues("item_list", "200")); got != 2 {
		t.Errorf("item_list/200 = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.passthroughTotal.WithLabelValues("item_rate", "404")); got != 1 {
		t.Errorf("item_rate/404 = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.confirmTotal.WithLabelValues("rejected")); got != 1 {
		t.Errorf("confirm/rejected = %v, want 1", got)
	}
}

func TestProxyMetricsNilSafe(t *testing.T) {
	var m *ProxyMetrics
	m.ObservePassthrough("item_list", "200")
	m.ObserveConfirm("ok")
	m.ObserveLatency("item_list", 0.1)
}
