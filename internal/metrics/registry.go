package metrics

import "github.com/prometheus/client_golang/prometheus"

// Store registry Prometheus metrics.
var (
	RegistryStores = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registry_stores",
			Help:      "Vector stores currently held by the registry",
		},
	)

	RegistryRegistrationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_registrations_total",
			Help:      "Total vector stores registered",
		},
	)

	RegistryEvictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_evictions_total",
			Help:      "Total vector stores evicted to respect capacity",
		},
	)

	RegistryLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_lookups_total",
			Help:      "Vector store lookups by result",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var registryMetricsRegistered bool

// RegisterRegistryMetrics registers Prometheus registry metrics. Must be called once from main.
func RegisterRegistryMetrics() {
	if registryMetricsRegistered {
		return
	}
	prometheus.MustRegister(RegistryStores)
	prometheus.MustRegister(RegistryRegistrationsTotal)
	prometheus.MustRegister(RegistryEvictionsTotal)
	prometheus.MustRegister(RegistryLookupsTotal)
	registryMetricsRegistered = true
}
