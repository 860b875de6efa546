package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus instruments for the server. Each instance
// owns its own registry so tests can create independent sets.
type Metrics struct {
	registry *prometheus.Registry

	// ClientsConnected tracks currently connected fan-out channel clients.
	ClientsConnected prometheus.Gauge
	// Broadcasts counts state-change notifications sent to all clients.
	Broadcasts prometheus.Counter
	// ChatMessages counts message mutations by resulting status.
	ChatMessages *prometheus.CounterVec
	// StoreFlushes and StoreFlushErrors count collection file rewrites.
	StoreFlushes     *prometheus.CounterVec
	StoreFlushErrors *prometheus.CounterVec
}

// New creates a Metrics set backed by a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		ClientsConnected: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ws_clients_connected",
			Help: "Number of currently connected fan-out channel clients.",
		}),
		Broadcasts: factory.NewCounter(prometheus.CounterOpts{
			Name: "ws_broadcasts_total",
			Help: "Total notifications broadcast to channel clients.",
		}),
		ChatMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Chat message mutations by resulting status.",
		}, []string{"status"}),
		StoreFlushes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "store_flushes_total",
			Help: "Collection file rewrites by collection.",
		}, []string{"collection"}),
		StoreFlushErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "store_flush_errors_total",
			Help: "Failed collection file rewrites by collection.",
		}, []string{"collection"}),
	}
}

// WithGoCollectors registers process and Go runtime collectors. Meant for
// the real server, not for tests.
func (m *Metrics) WithGoCollectors() *Metrics {
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler returns an http.Handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
