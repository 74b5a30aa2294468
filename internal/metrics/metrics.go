// Package metrics exposes Prometheus collectors for the dispatch service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

const namespace = "dispatch"

// Module provides a Metrics instance backed by its own registry.
var Module = fx.Provide(New)

// Metrics groups every collector the service reports.
type Metrics struct {
	registry *prometheus.Registry

	ordersPlaced     *prometheus.CounterVec
	transitions      *prometheus.CounterVec
	eventsRelayed    *prometheus.CounterVec
	relayLatency     prometheus.Histogram
	streamClients    prometheus.Gauge
	requestDuration  *prometheus.HistogramVec
	settingsCacheHit *prometheus.CounterVec
}

// New registers collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	reg.MustRegister(prometheus.NewGoCollector())

	return &Metrics{
		registry: reg,
		ordersPlaced: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders placed by customers.",
		}, []string{"type"}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Lifecycle actions requested, by outcome.",
		}, []string{"action", "result"}),
		eventsRelayed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_relayed_total",
			Help:      "Outbox events handed to subscribers.",
		}, []string{"result"}),
		relayLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_relay_delay_seconds",
			Help:      "Time between an event being recorded and being published.",
			Buckets:   prometheus.DefBuckets,
		}),
		streamClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_clients",
			Help:      "Connected WebSocket clients.",
		}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
		settingsCacheHit: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settings_cache_lookups_total",
			Help:      "Settings cache lookups by result.",
		}, []string{"result"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) OrderPlaced(orderType string) {
	m.ordersPlaced.WithLabelValues(orderType).Inc()
}

func (m *Metrics) Transition(action string, err error) {
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	m.transitions.WithLabelValues(action, result).Inc()
}

func (m *Metrics) EventRelayed(recordedAt time.Time, err error) {
	if err != nil {
		m.eventsRelayed.WithLabelValues("failed").Inc()
		return
	}
	m.eventsRelayed.WithLabelValues("published").Inc()
	if !recordedAt.IsZero() {
		m.relayLatency.Observe(time.Since(recordedAt).Seconds())
	}
}

func (m *Metrics) StreamOpened() { m.streamClients.Inc() }

func (m *Metrics) StreamClosed() { m.streamClients.Dec() }

func (m *Metrics) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(code)).Observe(elapsed.Seconds())
}

func (m *Metrics) SettingsCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.settingsCacheHit.WithLabelValues(result).Inc()
}
