package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ShopMetrics records shop state activity. A nil receiver is a no-op so
// callers never need to guard.
type ShopMetrics struct {
	changes         *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	persistDuration *prometheus.HistogramVec
	ordersPlaced    *prometheus.CounterVec
	orderValue      prometheus.Histogram
	returnsFiled    prometheus.Counter
	activeSessions  prometheus.Gauge
}

// NewShopMetrics registers the shop metrics on the provided registerer.
func NewShopMetrics(reg prometheus.Registerer) *ShopMetrics {
	if reg == nil {
		return &ShopMetrics{}
	}
	m := &ShopMetrics{
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_state_changes_total",
			Help: "Persisted shop state changes by collection.",
		}, []string{"kind"}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_persist_failures_total",
			Help: "Failed writes to the document store by collection.",
		}, []string{"kind"}),
		persistDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shop_persist_duration_seconds",
			Help:    "Latency of document store writes.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_orders_placed_total",
			Help: "Orders placed by payment method.",
		}, []string{"payment_method"}),
		orderValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shop_order_value",
			Help:    "Order totals at checkout.",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000},
		}),
		returnsFiled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_returns_requested_total",
			Help: "Return requests submitted.",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shop_active_sessions",
			Help: "Signed-in shop containers held in memory.",
		}),
	}
	reg.MustRegister(m.changes, m.persistFailures, m.persistDuration, m.ordersPlaced, m.orderValue, m.returnsFiled, m.activeSessions)
	return m
}

// IncChange counts a persisted change to the named collection.
func (m *ShopMetrics) IncChange(kind string) {
	if m == nil || m.changes == nil {
		return
	}
	m.changes.WithLabelValues(normalizeLabel(kind)).Inc()
}

// ObservePersist records a store write and whether it failed.
func (m *ShopMetrics) ObservePersist(kind string, duration time.Duration, err error) {
	if m == nil || m.persistDuration == nil {
		return
	}
	label := normalizeLabel(kind)
	m.persistDuration.WithLabelValues(label).Observe(duration.Seconds())
	if err != nil {
		m.persistFailures.WithLabelValues(label).Inc()
	}
}

// ObserveOrder counts a placed order and its total.
func (m *ShopMetrics) ObserveOrder(paymentMethod string, total float64) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
	m.orderValue.Observe(total)
}

// IncReturn counts a submitted return request.
func (m *ShopMetrics) IncReturn() {
	if m == nil || m.returnsFiled == nil {
		return
	}
	m.returnsFiled.Inc()
}

// SetActiveSessions reports how many containers the registry holds.
func (m *ShopMetrics) SetActiveSessions(n int) {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
