package httpapi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vaultview/vaultview/pkg/portfolio"
)

// Metrics holds the Prometheus collectors of the aggregation layer.
type Metrics struct {
	TenantFetches     *prometheus.CounterVec
	TenantFetchTime   prometheus.Histogram
	DeviceLookups     *prometheus.CounterVec
	SessionsStarted   prometheus.Counter
	SessionsDiscarded prometheus.Counter
}

// NewMetrics registers and returns the collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TenantFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vaultview_tenant_fetches_total",
			Help: "Tenant fetch pipelines by terminal status",
		}, []string{"status"}),
		TenantFetchTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vaultview_tenant_fetch_duration_seconds",
			Help:    "Duration of complete tenant fetch pipelines",
			Buckets: prometheus.DefBuckets,
		}),
		DeviceLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vaultview_device_lookups_total",
			Help: "Drill-down device lookups by outcome",
		}, []string{"outcome"}),
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "vaultview_sessions_started_total",
			Help: "Credential sets submitted and turned into sessions",
		}),
		SessionsDiscarded: factory.NewCounter(prometheus.CounterOpts{
			Name: "vaultview_sessions_discarded_total",
			Help: "Sessions discarded by returning to configuration",
		}),
	}
}

// TenantFetchCompleted implements portfolio.FetchObserver.
func (m *Metrics) TenantFetchCompleted(status portfolio.Status, duration time.Duration) {
	m.TenantFetches.WithLabelValues(string(status)).Inc()
	m.TenantFetchTime.Observe(duration.Seconds())
}
